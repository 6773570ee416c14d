package packager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/clipmaster/ext-packager/internal/config"
	"github.com/clipmaster/ext-packager/internal/logger"
)

const (
	// MarkerFilename marks that a packaging run is in progress to avoid
	// two instances racing on the same output archive.
	MarkerFilename = "ext-packager-marker.bin"

	// markerLifetime is the period after which a stale marker is ignored.
	markerLifetime = 2 * time.Minute

	// basePackagerExecutable is the executable name without platform extension.
	basePackagerExecutable = "ext-packager"
)

// errPackagerRunning indicates another packaging run holds the marker.
var errPackagerRunning = errors.New("another packaging run is in progress")

// IsPackagerRunningNow checks presence of a marker file and attempts recovery if it looks stale.
func IsPackagerRunningNow(ctx context.Context) bool {
	logger.Debug(ctx, "Checking for the presence of a packaging marker")

	fileInfo, err := os.Stat(MarkerFilename)
	if err == nil {
		if time.Since(fileInfo.ModTime()) <= markerLifetime {
			return true
		}

		logger.Info(ctx, "The packaging marker is too old, attempting cleanup")

		if err = terminateProcessByName(packagerExecutable()); err != nil {
			return true
		}

		if err = os.Remove(MarkerFilename); err != nil {
			return true
		}

		return false
	}

	if errors.Is(err, os.ErrNotExist) {
		logger.Debug(ctx, "Packaging marker not found, continuing")

		return false
	}

	logger.Infof(ctx, "Unable to read packaging marker: %v", err)

	return false
}

// createMarker drops the marker file recording the current process ID.
func createMarker(ctx context.Context) error {
	contents := []byte(strconv.Itoa(os.Getpid()))
	if err := os.WriteFile(MarkerFilename, contents, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("create packaging marker: %w", err)
	}

	logger.DebugKV(ctx, "Created packaging marker", "path", MarkerFilename)

	return nil
}

// removeMarker deletes the marker file, best effort.
func removeMarker(ctx context.Context) {
	if err := os.Remove(MarkerFilename); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warnf(ctx, "Unable to remove packaging marker: %v", err)
	}
}

// terminateProcessByName tries to kill processes with the provided executable name.
func terminateProcessByName(processName string) error {
	processList, err := ps.Processes()
	if err != nil {
		return err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() != processName {
			continue
		}

		var runningProcess *os.Process

		runningProcess, err = os.FindProcess(process.Pid())
		if err != nil {
			return err
		}

		if err = runningProcess.Kill(); err != nil {
			return err
		}
	}

	return nil
}

// getExecutableExtension returns ".exe" on Windows and "" elsewhere.
func getExecutableExtension() string {
	if strings.Contains(strings.ToLower(runtime.GOOS), "windows") {
		return ".exe"
	}

	return ""
}

func packagerExecutable() string {
	return basePackagerExecutable + getExecutableExtension()
}
