package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/lixenwraith/barrace/score"
	"github.com/lixenwraith/barrace/snapshot"
)

// exportFiles writes the CSV export and an SVG snapshot side by side
// Names carry a short random suffix so repeated exports never overwrite each other
func exportFiles(dir string, index int, csv string, frame score.Frame, title string) (csvPath, svgPath string, err error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("export dir: %w", err)
	}
	base := fmt.Sprintf("standings-game-%d-%s", index, uuid.NewString()[:8])

	csvPath = filepath.Join(dir, base+".csv")
	if err := os.WriteFile(csvPath, []byte(csv), 0644); err != nil {
		return "", "", fmt.Errorf("write csv: %w", err)
	}

	svgPath = filepath.Join(dir, base+".svg")
	f, err := os.Create(svgPath)
	if err != nil {
		return csvPath, "", fmt.Errorf("create svg: %w", err)
	}
	err = snapshot.WriteSVG(f, frame, snapshot.Options{Title: title})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(svgPath)
		return csvPath, "", err
	}
	return csvPath, svgPath, nil
}
