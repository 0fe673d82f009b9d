// sctest compiles every program under test with scc and compares the
// assembly, diagnostics and exit status against golden files.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-multierror"
)

// Execution is what one compiler run produced.
type Execution struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exitCode"`
	TimedOut bool   `json:"timed_out,omitempty"`
}

// Golden is the recorded expectation for one source file. Hash covers the
// source and the compiler binary that produced the recording.
type Golden struct {
	Hash   string    `json:"hash"`
	Args   []string  `json:"args,omitempty"`
	Result Execution `json:"result"`
}

type FileTestResult struct {
	File    string
	Status  string // PASS, FAIL, SKIP, ERROR
	Message string
	Diff    string
}

var (
	compiler       = flag.String("compiler", "./scc", "Path to the compiler under test.")
	compilerArgs   = flag.String("args", "", "Extra arguments for the compiler (space-separated).")
	testFiles      = flag.String("test-files", "testdata/programs/*.c", "Glob pattern(s) for files to test (space-separated).")
	generateGolden = flag.Bool("generate-golden", false, "Record golden files instead of comparing against them.")
	timeout        = flag.Duration("timeout", 5*time.Second, "Timeout for each compiler run.")
	jobs           = flag.Int("j", 4, "Number of parallel test jobs.")
	useCache       = flag.Bool("cached", false, "Skip files whose source and compiler are unchanged since the golden file was recorded.")
	jsonDir        = flag.String("dir", "", "Directory to store/read golden JSON files (defaults to source file dir).")
	verbose        = flag.Bool("v", false, "Print passing and skipped files too.")
)

const (
	cRed    = "\x1b[91m"
	cYellow = "\x1b[93m"
	cGreen  = "\x1b[92m"
	cCyan   = "\x1b[96m"
	cBold   = "\x1b[1m"
	cNone   = "\x1b[0m"
)

func main() {
	flag.Parse()
	log.SetFlags(0)

	if *jobs < 1 {
		*jobs = 1
	}

	files, err := expandGlobPatterns(*testFiles)
	if err != nil {
		log.Fatalf("%s[ERROR]%s Invalid glob pattern(s): %v\n", cRed, cNone, err)
	}
	if len(files) == 0 {
		log.Println("No test files found matching the pattern(s).")
		return
	}

	compilerHash, err := hashFiles(*compiler)
	if err != nil {
		log.Fatalf("%s[ERROR]%s Could not hash compiler %s: %v\n", cRed, cNone, *compiler, err)
	}

	results := runAll(files, compilerHash)
	if err := printSummary(results); err != nil {
		os.Exit(1)
	}
}

func getJSONPath(sourceFile string) string {
	jsonFileName := "." + filepath.Base(sourceFile) + ".json"
	if *jsonDir != "" {
		return filepath.Join(*jsonDir, jsonFileName)
	}
	return filepath.Join(filepath.Dir(sourceFile), jsonFileName)
}

// hashFiles computes one xxhash over the contents of every path in order.
func hashFiles(paths ...string) (string, error) {
	h := xxhash.New()
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("%x", h.Sum64()), nil
}

func runAll(files []string, compilerHash string) []*FileTestResult {
	tasks := make(chan string, len(files))
	resultsChan := make(chan *FileTestResult, len(files))
	var wg sync.WaitGroup

	for i := 0; i < *jobs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range tasks {
				resultsChan <- testFile(file, compilerHash)
			}
		}()
	}

	for _, file := range files {
		tasks <- file
	}
	close(tasks)

	wg.Wait()
	close(resultsChan)

	var results []*FileTestResult
	for result := range resultsChan {
		results = append(results, result)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].File < results[j].File })
	return results
}

func testFile(file, compilerHash string) *FileTestResult {
	sourceHash, err := hashFiles(file)
	if err != nil {
		return &FileTestResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Failed to hash source file: %v", err)}
	}
	hash := sourceHash + "-" + compilerHash
	goldenFile := getJSONPath(file)

	if *generateGolden {
		return recordGolden(file, goldenFile, hash)
	}

	goldenData, err := os.ReadFile(goldenFile)
	if err != nil {
		return &FileTestResult{File: file, Status: "SKIP", Message: "Cannot test without a corresponding .json golden file"}
	}
	var golden Golden
	if err := json.Unmarshal(goldenData, &golden); err != nil {
		return &FileTestResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Could not parse golden file %s: %v", goldenFile, err)}
	}

	if *useCache && golden.Hash == hash {
		return &FileTestResult{File: file, Status: "SKIP", Message: "Unchanged since the golden file was recorded"}
	}

	got := compile(file, golden.Args)
	if diff := cmp.Diff(golden.Result, got); diff != "" {
		return &FileTestResult{File: file, Status: "FAIL", Message: "Output differs from golden file", Diff: diff}
	}
	return &FileTestResult{File: file, Status: "PASS"}
}

func recordGolden(file, goldenFile, hash string) *FileTestResult {
	args := strings.Fields(*compilerArgs)
	golden := Golden{Hash: hash, Args: args, Result: compile(file, args)}

	jsonData, err := json.MarshalIndent(golden, "", "  ")
	if err != nil {
		return &FileTestResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Failed to marshal golden data to JSON: %v", err)}
	}
	if *jsonDir != "" {
		if err := os.MkdirAll(*jsonDir, 0755); err != nil {
			return &FileTestResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Failed to create directory %s: %v", *jsonDir, err)}
		}
	}
	if err := os.WriteFile(goldenFile, jsonData, 0644); err != nil {
		return &FileTestResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Failed to write golden file %s: %v", goldenFile, err)}
	}
	return &FileTestResult{File: file, Status: "PASS", Message: "Golden file written to " + goldenFile}
}

func compile(file string, args []string) Execution {
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var stdout, stderr strings.Builder
	cmd := exec.CommandContext(ctx, *compiler, append(append([]string{}, args...), file)...)
	cmd.Stdout, cmd.Stderr = &stdout, &stderr

	err := cmd.Run()
	result := Execution{Stdout: stdout.String(), Stderr: stderr.String()}
	if ctx.Err() == context.DeadlineExceeded {
		result.TimedOut = true
		result.ExitCode = -1
		return result
	}

	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	case err != nil:
		result.ExitCode = -1
		result.Stderr += err.Error()
	}
	return result
}

func expandGlobPatterns(patterns string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range strings.Fields(patterns) {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		for _, match := range matches {
			if !seen[match] {
				seen[match] = true
				files = append(files, match)
			}
		}
	}
	return files, nil
}

// printSummary reports every result and returns the failures combined.
func printSummary(results []*FileTestResult) error {
	var failures *multierror.Error
	counts := make(map[string]int)

	for _, r := range results {
		counts[r.Status]++
		switch r.Status {
		case "PASS":
			if *verbose {
				fmt.Printf("%s[PASS]%s %s %s\n", cGreen, cNone, r.File, r.Message)
			}
		case "SKIP":
			if *verbose {
				fmt.Printf("%s[SKIP]%s %s: %s\n", cCyan, cNone, r.File, r.Message)
			}
		case "FAIL":
			fmt.Printf("%s[FAIL]%s %s: %s\n%s\n", cRed, cNone, r.File, r.Message, r.Diff)
			failures = multierror.Append(failures, fmt.Errorf("%s: %s", r.File, r.Message))
		default:
			fmt.Printf("%s[ERROR]%s %s: %s\n", cYellow, cNone, r.File, r.Message)
			failures = multierror.Append(failures, fmt.Errorf("%s: %s", r.File, r.Message))
		}
	}

	fmt.Printf("\n%sSummary:%s %d passed, %d failed, %d skipped, %d errors\n",
		cBold, cNone, counts["PASS"], counts["FAIL"], counts["SKIP"], counts["ERROR"])
	return failures.ErrorOrNil()
}
