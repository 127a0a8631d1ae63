package doctor

import (
	"os"
	"path/filepath"
)

// writeDocument writes text to path through a temporary file in the same
// directory, so a failed write never leaves a truncated document. The
// output keeps the permissions of the source file.
func writeDocument(path, source, text string) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(source); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".fntverify-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
