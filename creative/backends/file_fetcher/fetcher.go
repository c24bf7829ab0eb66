package file_fetcher

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/signstack/creative-server/creative"
)

// NewFileFetcher loads creative documents from local files.
//
// This expects each creative in the directory to be stored as "{id}.json".
// For example, when asked to fetch the creative with ID == "23", it will
// return the data from "directory/23.json". Files are read per call; the
// creative cache above this layer keeps hot documents in memory.
func NewFileFetcher(directory string) creative.Fetcher {
	return &fileFetcher{directory: directory}
}

type fileFetcher struct {
	directory string
}

func (f *fileFetcher) FetchCreative(ctx context.Context, id string) (json.RawMessage, error) {
	// Reject ids that would escape the creative directory.
	if filepath.Base(id) != id {
		return nil, creative.NotFoundError{ID: id}
	}

	data, err := os.ReadFile(filepath.Join(f.directory, id+".json"))
	if os.IsNotExist(err) {
		return nil, creative.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}
