package telemetry

import "github.com/twentefluids/dodecalog/internal/errors"

const defaultDirPerm = 0o755

type Config struct {
	Enabled bool
	DBPath  string
}

func (c Config) Validate() error {
	errFactory := errors.New()
	if c.Enabled && c.DBPath == "" {
		return errFactory.New(errors.ErrInvalidDBPath)
	}
	return nil
}
