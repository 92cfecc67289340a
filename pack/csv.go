package pack

import (
	"fmt"
	"os"

	"github.com/quintel/etm/config"
	"github.com/quintel/etm/internal/pathutil"
)

// WriteFrameCSV writes a frame to a CSV file using the configured field and
// decimal separators. Relative paths land under ./outputs.
func WriteFrameCSV(frame *Frame, path string, settings config.Settings) error {
	target, err := pathutil.ResolveForWrite(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}

	opts := CSVOptions{DecimalSeparator: settings.DecimalSeparator}
	if settings.CSVSeparator != "" {
		opts.Separator = rune(settings.CSVSeparator[0])
	}
	if err := frame.WriteCSV(f, opts); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", target, err)
	}
	return f.Close()
}
