package writer

import (
	"fmt"
	"io"
	"os"
)

// writeFile creates path and hands it to write. A close failure is returned
// when write itself succeeded.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	return closeAfter(f, write(f))
}

func closeAfter(c io.Closer, err error) error {
	cerr := c.Close()
	if err != nil {
		return err
	}
	if cerr != nil {
		return fmt.Errorf("failed to close output file: %w", cerr)
	}
	return nil
}
