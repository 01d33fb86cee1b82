package store

import (
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/ValentinKolb/fundb/lib/db/util"
)

// pathRoot is the directory below the base dir holding all generated paths.
const pathRoot = ".fundb"

// UniquePath returns a fresh instance path below baseDir:
//
//	<baseDir>/.fundb/<unix-nano>/<caller-file>_<caller-line>_<random>
//
// The caller's source position makes leftover directories easy to trace back,
// the random suffix keeps paths created in the same nanosecond apart.
func UniquePath(baseDir string) string {
	return uniquePath(baseDir, 1)
}

// uniquePath attributes the path to the frame skip levels above its caller.
func uniquePath(baseDir string, skip int) string {
	file, line := "unknown", 0
	if _, f, l, ok := runtime.Caller(skip + 1); ok {
		file, line = filepath.Base(f), l
	}
	return filepath.Join(
		baseDir,
		pathRoot,
		fmt.Sprintf("%d", time.Now().UnixNano()),
		fmt.Sprintf("%s_%d_%d", file, line, uint32(util.GenerateSeed())),
	)
}
