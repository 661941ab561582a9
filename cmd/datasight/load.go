package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/datasight/internal/core"
	"github.com/spf13/cobra"
)

// loadTable runs the ingestion pipeline over a local file, honouring the
// persistent --delimiter and --max-size flags.
func loadTable(ctx context.Context, cmd *cobra.Command, path string) (*core.Table, error) {
	name, _ := cmd.Flags().GetString("delimiter")
	delimiter, ok := core.ParseDelimiter(name)
	if !ok {
		return nil, fmt.Errorf("unknown delimiter %q", name)
	}
	maxSize, _ := cmd.Flags().GetInt64("max-size")

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}

	return core.Ingest(ctx, core.File{
		Name:    filepath.Base(path),
		Size:    st.Size(),
		Content: f,
	}, core.IngestOptions{MaxFileSize: maxSize, Delimiter: delimiter})
}
