package intent

import (
	"regexp"
	"strconv"
	"strings"

	"eassistant/internal/types"
)

// Parameter extraction works on raw input so extracted email text keeps
// its original casing. Matching is case-insensitive via inline flags.

var loadFilePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:load|process|analyze)\s+(\S+\.(?:docx|pdf|txt|eml|doc))`),
	regexp.MustCompile(`(?i)(\S+\.(?:docx|pdf|txt|eml|doc))(?:\s|$)`),
	regexp.MustCompile(`(?i)(?:help with|work with|process|load|analyze)\s+['"]([^'"]+)['"]`),
	regexp.MustCompile(`(?i)(?:here.s|here is)\s+(?:a\s+)?(?:file|document):\s*(\S+\.(?:docx|pdf|txt|eml|doc))`),
	regexp.MustCompile(`(?i)(?:file|document)\s+(?:is|at|located at):\s*(\S+)`),
}

var emailIntroPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)(?:process|analyze|help with|here.s|here is)\s+(?:this\s+)?(?:email|message):\s*(.*)`),
	regexp.MustCompile(`(?is)(?:i have|got)\s+(?:an\s+)?(?:email|message):\s*(.*)`),
	regexp.MustCompile(`(?is)(?:can you help with|work on)\s+(?:this\s+)?(?:email|message):\s*(.*)`),
	regexp.MustCompile(`(?is)^process:\s*(.*)`),
}

var emailIndicatorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)from:.*to:.*subject:`),
	regexp.MustCompile(`(?is)subject:.*from:`),
	regexp.MustCompile(`(?is)from:.*\n.*to:.*\n.*subject:`),
	regexp.MustCompile(`(?is)from:.*\n.*subject:.*\n.*to:`),
	regexp.MustCompile(`(?is)to:.*\n.*from:.*\n.*subject:`),
	regexp.MustCompile(`(?is)dear.*sincerely|regards|best`),
}

var (
	emailHeaderRe  = regexp.MustCompile(`(?i)from:\s*\S+@\S+`)
	subjectLineRe  = regexp.MustCompile(`(?i)subject:`)
	sessionRefRes  = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:email|session)\s+#?(\d+)`),
		regexp.MustCompile(`#(\d+)`),
	}
	instructionRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)make it (?:more|less) \w+`),
		regexp.MustCompile(`(?i)add \w+`),
		regexp.MustCompile(`(?i)include \w+`),
		regexp.MustCompile(`(?i)change \w+`),
		regexp.MustCompile(`(?i)remove \w+`),
	}
)

var tonePatterns = []struct {
	tone string
	re   *regexp.Regexp
}{
	{"formal", regexp.MustCompile(`formal|professional`)},
	{"casual", regexp.MustCompile(`casual|informal|friendly`)},
	{"concise", regexp.MustCompile(`concise|brief|short`)},
	{"polite", regexp.MustCompile(`polite|courteous`)},
}

var cloudPatterns = []*regexp.Regexp{
	regexp.MustCompile(`save.*cloud`),
	regexp.MustCompile(`save.*s3`),
	regexp.MustCompile(`cloud.*storage`),
	regexp.MustCompile(`upload.*draft`),
	regexp.MustCompile(`save.*aws`),
	regexp.MustCompile(`to.*cloud`),
	regexp.MustCompile(`in.*cloud`),
}

var savePathPatterns = []struct {
	re  *regexp.Regexp
	dir bool
}{
	{regexp.MustCompile(`save\s+to\s+(\S+\.(?:txt|doc|docx|pdf|eml))`), false},
	{regexp.MustCompile(`save\s+as\s+(\S+)`), false},
	{regexp.MustCompile(`filepath?\s*:\s*(\S+)`), false},
	{regexp.MustCompile(`path\s*:\s*(\S+)`), false},
	{regexp.MustCompile(`save\s+to\s+([/\\][\w/\\.-]+)`), false},
	{regexp.MustCompile(`save\s+to\s+([\w.-]+[/\\][\w/\\.-]+)`), false},
	{regexp.MustCompile(`save.*in\s+dir(?:ectory)?\s+(\S+)`), true},
	{regexp.MustCompile(`save.*to\s+dir(?:ectory)?\s+(\S+)`), true},
}

// cloudTerms are never file paths even when a path pattern catches them.
var cloudTerms = map[string]bool{
	"cloud": true, "s3": true, "aws": true, "bucket": true,
}

// extractParams pulls every recognizable parameter out of one input.
// Each extractor is independent; absent parameters stay zero.
func extractParams(input, lower string) types.Params {
	return types.Params{
		EmailContent: extractEmailContent(input),
		FilePath:     extractFilePath(input),
		Tone:         extractTone(lower),
		Instructions: extractInstructions(input),
		SavePath:     extractSavePath(lower),
		Cloud:        extractCloud(lower),
		SessionID:    extractSessionID(input),
	}
}

// extractEmailContent returns the email text carried in the input, the
// file path to load it from, or "" when the input carries neither. A
// path found by extractFilePath wins so "process report.pdf" is treated
// as a file reference rather than literal email text.
func extractEmailContent(input string) string {
	if path := extractFilePath(input); path != "" {
		return path
	}
	for _, re := range emailIntroPatterns {
		m := re.FindStringSubmatch(input)
		if m == nil {
			continue
		}
		content := strings.TrimSpace(m[1])
		if emailHeaderRe.MatchString(content) || subjectLineRe.MatchString(content) || len(content) > 50 {
			return content
		}
	}
	for _, re := range emailIndicatorPatterns {
		if re.MatchString(input) {
			return strings.TrimSpace(input)
		}
	}
	return ""
}

// extractFilePath finds a file reference in natural language.
func extractFilePath(input string) string {
	for _, re := range loadFilePatterns {
		m := re.FindStringSubmatch(input)
		if m == nil {
			continue
		}
		path := strings.Trim(strings.TrimSpace(m[1]), `"'`)
		switch strings.ToLower(path) {
		case "from:", "to:", "subject:":
			continue
		}
		return path
	}
	return ""
}

func extractTone(lower string) string {
	for _, tp := range tonePatterns {
		if tp.re.MatchString(lower) {
			return tp.tone
		}
	}
	return ""
}

// extractInstructions collects refinement phrases like "make it more
// formal" or "add availability". When no phrase matches, the whole
// input is the instruction.
func extractInstructions(input string) string {
	var found []string
	for _, re := range instructionRes {
		found = append(found, re.FindAllString(input, -1)...)
	}
	if len(found) == 0 {
		return input
	}
	return strings.Join(found, " ")
}

func extractCloud(lower string) bool {
	for _, re := range cloudPatterns {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

// extractSavePath finds an explicit destination for a draft. Directory
// references come back with a trailing separator so the saver knows to
// generate a file name inside them.
func extractSavePath(lower string) string {
	for _, sp := range savePathPatterns {
		m := sp.re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		path := strings.Trim(strings.TrimSpace(m[1]), `"'`)
		if cloudTerms[strings.ToLower(path)] {
			continue
		}
		if sp.dir && !strings.HasSuffix(path, "/") && !strings.ContainsAny(path, `/\`) {
			path += "/"
		}
		return path
	}
	return ""
}

// extractSessionID returns the archived session number referenced by
// phrases like "email 2", "session #3" or "#4". Zero means none.
func extractSessionID(input string) int64 {
	for _, re := range sessionRefRes {
		m := re.FindStringSubmatch(input)
		if m == nil {
			continue
		}
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		return id
	}
	return 0
}
