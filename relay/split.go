package relay

import (
	"strings"

	"github.com/Laisky/zap"

	"github.com/scriptgen-ra/scriptgen/common/logger"
	"github.com/scriptgen-ra/scriptgen/prompt"
)

// SplitStrategy names which parsing path produced a split result, so the
// outcome is observable in logs and stored metadata.
type SplitStrategy string

const (
	// StrategyMarker means both protocol markers were found and honored.
	StrategyMarker SplitStrategy = "marker"
	// StrategyLineClassify means the marker contract was violated and the
	// output was partitioned by Java structure heuristics.
	StrategyLineClassify SplitStrategy = "line-classify"
	// StrategyWholeText is the degenerate fallback: the entire completion
	// is used as both artifacts.
	StrategyWholeText SplitStrategy = "whole-text"
)

// SplitResult holds the two artifacts and the strategy that produced them.
type SplitResult struct {
	MethodFile string
	TestFile   string
	Strategy   SplitStrategy
}

// EmptyArtifactError reports a split that produced an empty method or test
// artifact. It is not recoverable by re-splitting.
type EmptyArtifactError struct {
	Artifact string
}

func (e *EmptyArtifactError) Error() string {
	return "generated " + e.Artifact + " artifact is empty"
}

// Split partitions a raw completion into method and test artifacts. The
// marker protocol is tried first; on violation the line classifier runs,
// degrading to whole-text duplication when it cannot find a boundary.
// Both artifacts are guaranteed non-empty on success.
func Split(raw string) (*SplitResult, error) {
	res, ok := markerSplit(raw)
	if !ok {
		res = lineClassifySplit(raw)
	}

	if strings.TrimSpace(res.MethodFile) == "" {
		return nil, &EmptyArtifactError{Artifact: "method"}
	}
	if strings.TrimSpace(res.TestFile) == "" {
		return nil, &EmptyArtifactError{Artifact: "test"}
	}
	return res, nil
}

// markerSplit applies the protocol contract: text between the method marker
// and the test marker is the method file, text after the test marker is the
// test file. Both markers must be present, method marker first.
func markerSplit(raw string) (*SplitResult, bool) {
	methodIdx := strings.Index(raw, prompt.MethodMarker)
	testIdx := strings.Index(raw, prompt.TestMarker)
	if methodIdx < 0 || testIdx < 0 || testIdx < methodIdx {
		return nil, false
	}

	methodStart := methodIdx + len(prompt.MethodMarker)
	testStart := testIdx + len(prompt.TestMarker)
	return &SplitResult{
		MethodFile: strings.TrimSpace(raw[methodStart:testIdx]),
		TestFile:   strings.TrimSpace(raw[testStart:]),
		Strategy:   StrategyMarker,
	}, true
}

// lineClassifySplit walks the completion line by line, switching from the
// method side to the test side the first time a line looks like a test
// class or annotation. The switch is one-way. If either side ends up empty
// the whole completion becomes both artifacts.
func lineClassifySplit(raw string) *SplitResult {
	logger.Logger.Warn("completion missing structure markers, classifying lines")

	var methodLines, testLines []string
	inTest := false
	for _, line := range strings.Split(raw, "\n") {
		if !inTest && isTestBoundary(line) {
			inTest = true
		}
		if inTest {
			testLines = append(testLines, line)
		} else {
			methodLines = append(methodLines, line)
		}
	}

	method := strings.TrimSpace(strings.Join(methodLines, "\n"))
	test := strings.TrimSpace(strings.Join(testLines, "\n"))
	if method == "" || test == "" {
		logger.Logger.Warn("line classification found no boundary, using whole completion for both artifacts",
			zap.Int("lines", len(methodLines)+len(testLines)))
		return &SplitResult{
			MethodFile: raw,
			TestFile:   raw,
			Strategy:   StrategyWholeText,
		}
	}
	return &SplitResult{
		MethodFile: method,
		TestFile:   test,
		Strategy:   StrategyLineClassify,
	}
}

func isTestBoundary(line string) bool {
	if strings.Contains(line, "@Test") {
		return true
	}
	return strings.Contains(line, "public class") && strings.Contains(line, "Test")
}
