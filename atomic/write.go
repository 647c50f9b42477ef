/*
CppReview Analyzer - A tool for static code analysis
Copyright (C) 2024  CppReview Authors

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package atomic writes report files via a rename so a crash mid-run
// never leaves a truncated report behind.
package atomic

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile writes data to a temporary file next to name and renames
// it into place. The temporary file is removed on any failure.
func WriteFile(name string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(name), "tmp-*-"+filepath.Base(name))
	if err != nil {
		return fmt.Errorf("os.CreateTemp: %v", err)
	}
	defer os.Remove(f.Name())
	// CreateTemp defaults to 0600; reports should be world-readable.
	if err := os.Chmod(f.Name(), 0644); err != nil {
		return fmt.Errorf("os.Chmod: %v", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %v", f.Name(), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %v", f.Name(), err)
	}
	if err := os.Rename(f.Name(), name); err != nil {
		return fmt.Errorf("failed to rename %s to %s: %v", f.Name(), name, err)
	}
	return nil
}
