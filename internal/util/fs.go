package util

import "os"

// WriteFileAtomic writes data to a .tmp sibling and renames it into place.
// An interrupted write leaves only the sibling, never a partial target.
func WriteFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
