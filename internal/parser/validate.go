package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var compressionExts = []string{".gz", ".xz", ".zst"}

// SplitCompression returns the path without a known compression suffix and that suffix.
func SplitCompression(path string) (string, string) {
	lower := strings.ToLower(path)
	for _, ext := range compressionExts {
		if strings.HasSuffix(lower, ext) {
			return path[:len(path)-len(ext)], ext
		}
	}
	return path, ""
}

// DataExt is the lower-cased data extension of path, ignoring compression suffixes.
func DataExt(path string) string {
	base, _ := SplitCompression(path)
	return strings.ToLower(filepath.Ext(base))
}

// ValidateFile checks that path is an existing regular file with a supported extension and
// at most maxMB megabytes. maxMB <= 0 disables the size check.
func ValidateFile(path string, maxMB int) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &FileLoadError{Path: path, Reason: "file not found", Err: err}
		}
		return nil, &FileLoadError{Path: path, Reason: "stat failed", Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &FileLoadError{Path: path, Reason: "not a regular file"}
	}
	if _, ok := findLoader(path); !ok {
		return nil, &UnsupportedFormatError{Ext: DataExt(path)}
	}
	sizeMB := float64(info.Size()) / (1024 * 1024)
	if maxMB > 0 && sizeMB > float64(maxMB) {
		return nil, &FileSizeError{Path: path, SizeMB: sizeMB, MaxMB: maxMB}
	}
	return info, nil
}

func describeSize(info os.FileInfo) string {
	return fmt.Sprintf("%.2f MB", float64(info.Size())/(1024*1024))
}
