package fs

import (
	"errors"
	"os"
)

// TempSuffix is appended to the target name while an atomic write is in flight.
const TempSuffix = ".tmp"

// WriteFileAtomic replaces name with data. The content goes to name+TempSuffix
// first, is synced, and is then renamed over name. On failure the temp file is
// removed and name is left untouched.
func WriteFileAtomic(fsys FileSystem, name string, data []byte, perm os.FileMode) (err error) {
	tmp := name + TempSuffix

	f, err := fsys.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = fsys.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = fsys.Rename(tmp, name); err != nil {
		return errors.Join(err, fsys.Remove(tmp))
	}
	return nil
}
