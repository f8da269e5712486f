// Command fixture-export converts a captured frame+OCR log into the JSON
// bridge.FixtureRecording format the replay harness and FixtureBridge
// consume. Input is one bridge.FixtureFrame JSON object per line (the
// shape an operator's capture-logging hook would emit per tick); output
// is a single aggregated recording file. Grounded in the teacher's
// cmd/fixture-export/main.go (flag-driven read-log -> write-fixture CLI).
package main

// #region imports
import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/umaplay/career-agent/internal/bridge"
)

// #endregion

func main() {
	inPath := flag.String("in", "", "path to a JSONL capture log (one bridge.FixtureFrame per line)")
	outPath := flag.String("out", "fixture.json", "path to write the aggregated FixtureRecording JSON")
	description := flag.String("description", "", "description stamped into the output recording")
	flag.Parse()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "fixture-export: -in is required")
		os.Exit(2)
	}

	in, err := os.Open(*inPath)
	if err != nil {
		log.Fatalf("open %s: %v", *inPath, err)
	}
	defer in.Close()

	var frames []bridge.FixtureFrame
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var frame bridge.FixtureFrame
		if err := json.Unmarshal(line, &frame); err != nil {
			log.Fatalf("%s:%d: parse frame: %v", *inPath, lineNo, err)
		}
		frames = append(frames, frame)
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("read %s: %v", *inPath, err)
	}

	rec := bridge.FixtureRecording{Description: *description, Frames: frames}

	out, err := os.Create(*outPath)
	if err != nil {
		log.Fatalf("create %s: %v", *outPath, err)
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		log.Fatalf("write %s: %v", *outPath, err)
	}
	fmt.Fprintf(os.Stderr, "fixture-export: wrote %d frames to %s\n", len(frames), *outPath)
}
