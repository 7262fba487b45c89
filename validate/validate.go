// Command validate checks recorded whiteboard frame files. A recording holds
// one frame per line, exactly as it travelled over the websocket (see
// "whiteboard watch --record"). It checks:
//   - Every non-blank line decodes as a known event
//   - Stroke widths, text sizes and zoom factors are positive
//   - Circle radii are not negative and text is not empty
//
// Usage: validate [FILE...] (defaults to recordings/*.jsonl)
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/whiteboard/board/protocol"
	"github.com/wricardo/whiteboard/board/recording"
)

// ValidationResult captures the outcome of validating a single file.
// Counts is keyed by event kind; Errors lists one entry per bad line.
type ValidationResult struct {
	File   string
	Valid  bool
	Frames int
	Counts map[protocol.Kind]int
	Errors []string
}

// validateRecording reads a recording line by line and checks every frame
func validateRecording(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Counts: map[protocol.Kind]int{},
		Errors: []string{},
	}

	f, err := os.Open(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}
	defer f.Close()

	scanner := recording.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Line()
		if err := scanner.LineErr(); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		text := strings.TrimSpace(string(scanner.Bytes()))
		if text == "" {
			continue
		}

		e, err := protocol.Decode([]byte(text))
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		if err := checkEvent(e); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %s: %v", line, e.Kind(), err))
			continue
		}

		result.Frames++
		result.Counts[e.Kind()]++
	}
	if err := scanner.Err(); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", scanner.Line()+1, err))
	}

	if result.Frames == 0 && result.Valid {
		result.Valid = false
		result.Errors = append(result.Errors, "Recording contains no frames")
	}

	return result
}

// checkEvent applies the value checks Decode leaves to the renderer
func checkEvent(e protocol.Event) error {
	switch ev := e.(type) {
	case protocol.Line:
		return positive("width", ev.Width)
	case protocol.Rect:
		return positive("width", ev.Width)
	case protocol.Circle:
		if ev.Radius < 0 {
			return fmt.Errorf("radius %g is negative", ev.Radius)
		}
		return positive("width", ev.Width)
	case protocol.Text:
		if ev.Text == "" {
			return fmt.Errorf("text is empty")
		}
		return positive("size", ev.Size)
	case protocol.Zoom:
		return positive("factor", ev.Factor)
	}
	return nil
}

func positive(name string, v float64) error {
	if v <= 0 {
		return fmt.Errorf("%s %g must be positive", name, v)
	}
	return nil
}

// summary lists per-kind counts in protocol order
func summary(counts map[protocol.Kind]int) []string {
	var lines []string
	for _, k := range protocol.Kinds {
		if n := counts[k]; n > 0 {
			lines = append(lines, fmt.Sprintf("✓ %s: %d", k, n))
		}
	}
	return lines
}

// main validates the files named on the command line, printing a concise
// report and exiting with non-zero status if any are invalid.
func main() {
	files := os.Args[1:]
	if len(files) == 0 {
		var err error
		files, err = filepath.Glob(filepath.Join("recordings", "*.jsonl"))
		if err != nil {
			fmt.Printf("Error finding recordings: %v\n", err)
			os.Exit(1)
		}
	}
	if len(files) == 0 {
		fmt.Println("No recordings to validate")
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateRecording(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Printf("✅ VALID (%d frames)\n", result.Frames)
			for _, info := range summary(result.Counts) {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All recordings are valid!")
	} else {
		fmt.Println("❌ Some recordings have errors")
		os.Exit(1)
	}
}
