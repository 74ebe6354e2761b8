package device

import (
	"os"
	"path/filepath"
	"strings"
)

// LoadLastPort reads the persisted last-known port name. A missing file
// is not an error; it returns an empty name.
func LoadLastPort(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// SaveLastPort persists the port name for reuse on next startup,
// creating the parent directory if needed.
func SaveLastPort(path, portName string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(portName+"\n"), 0o644)
}
