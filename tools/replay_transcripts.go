//go:build ignore

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/muurk/keycalc/internal/server"
)

// Statistics tracks replay results across files
type Statistics struct {
	TotalFiles    int
	FailedFiles   int
	TotalRequests int
	TotalReplies  int
	Mismatches    []FileMismatch
}

// FileMismatch ties a mismatch to its transcript
type FileMismatch struct {
	File     string
	Mismatch server.ReplayMismatch
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: replay_transcripts <directory-or-file>")
		fmt.Println("Example: replay_transcripts ./transcripts/")
		fmt.Println("         replay_transcripts session-20260301-104043-001.jsonl")
		os.Exit(1)
	}

	path := os.Args[1]

	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Error accessing path: %v\n", err)
		os.Exit(1)
	}

	var files []string
	if info.IsDir() {
		files, err = filepath.Glob(filepath.Join(path, "*.jsonl"))
		if err != nil {
			fmt.Printf("Error finding JSONL files: %v\n", err)
			os.Exit(1)
		}
		if len(files) == 0 {
			fmt.Printf("No JSONL files found in %s\n", path)
			os.Exit(1)
		}
	} else {
		files = []string{path}
	}

	fmt.Printf("=== keycalc Transcript Replay ===\n")
	fmt.Printf("Files to replay: %d\n\n", len(files))

	var stats Statistics
	for _, file := range files {
		replayFile(file, &stats)
	}

	printStatistics(&stats)
	if stats.FailedFiles > 0 || len(stats.Mismatches) > 0 {
		os.Exit(1)
	}
}

func replayFile(filename string, stats *Statistics) {
	stats.TotalFiles++

	f, err := os.Open(filename)
	if err != nil {
		fmt.Printf("Error opening %s: %v\n", filename, err)
		stats.FailedFiles++
		return
	}
	defer f.Close()

	result, err := server.Replay(f)
	if err != nil {
		fmt.Printf("Error replaying %s: %v\n", filename, err)
		stats.FailedFiles++
		return
	}

	stats.TotalRequests += result.Requests
	stats.TotalReplies += result.Replies
	for _, m := range result.Mismatches {
		stats.Mismatches = append(stats.Mismatches, FileMismatch{File: filename, Mismatch: m})
	}
}

func printStatistics(stats *Statistics) {
	fmt.Printf("\n========================================\n")
	fmt.Printf("REPLAY RESULTS\n")
	fmt.Printf("========================================\n\n")

	fmt.Printf("Files Replayed:     %d\n", stats.TotalFiles)
	fmt.Printf("Unreadable Files:   %d\n", stats.FailedFiles)
	fmt.Printf("Requests:           %d\n", stats.TotalRequests)
	fmt.Printf("Replies:            %d\n", stats.TotalReplies)
	fmt.Printf("Mismatches:         %d\n", len(stats.Mismatches))

	if len(stats.Mismatches) > 0 {
		fmt.Printf("\n----------------------------------------\n")
		fmt.Printf("MISMATCHES (%d total)\n", len(stats.Mismatches))
		fmt.Printf("----------------------------------------\n")

		// Show first 10 mismatches
		maxShow := 10
		if len(stats.Mismatches) > maxShow {
			fmt.Printf("(Showing first %d of %d mismatches)\n", maxShow, len(stats.Mismatches))
		}
		for i, fm := range stats.Mismatches {
			if i >= maxShow {
				break
			}
			fmt.Printf("\nMismatch #%d:\n", i+1)
			fmt.Printf("  File: %s\n", fm.File)
			fmt.Printf("  %s\n", fm.Mismatch)
		}
	}

	fmt.Printf("\n========================================\n")
	if stats.FailedFiles == 0 && len(stats.Mismatches) == 0 {
		fmt.Printf("✅ SUCCESS: Every recorded reply was reproduced\n")
	} else {
		fmt.Printf("⚠️  ISSUES FOUND: %d mismatches, %d unreadable files\n", len(stats.Mismatches), stats.FailedFiles)
	}
	fmt.Printf("========================================\n")
}
