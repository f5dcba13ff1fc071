package tasks

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFeedConfig(t *testing.T, dir, name string) {
	t.Helper()
	content := `
url: "https://example.com/feed.xml"
settings:
  enabled: true
  refresh_interval: 600
`
	if err := os.WriteFile(filepath.Join(dir, name+".yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
