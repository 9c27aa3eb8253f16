package tracking

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/dshills/motto/internal/engine/buffer"
)

// DiffOptions configures diff computation.
type DiffOptions struct {
	// ContextLines is the number of unchanged lines kept around each change.
	ContextLines int

	// IgnoreCase compares lines case-insensitively.
	IgnoreCase bool

	// IgnoreWhitespace ignores leading and trailing whitespace on each line.
	IgnoreWhitespace bool

	// Timeout bounds the diff computation. Past it the result is still
	// correct but may not be minimal. Zero means no limit.
	Timeout time.Duration
}

// DefaultDiffOptions returns default diff options.
func DefaultDiffOptions() DiffOptions {
	return DiffOptions{
		ContextLines: 3,
		Timeout:      time.Second,
	}
}

// DiffType indicates the type of a diff hunk or line.
type DiffType uint8

const (
	// DiffEqual indicates unchanged lines.
	DiffEqual DiffType = iota

	// DiffInsert indicates added lines.
	DiffInsert

	// DiffDelete indicates removed lines.
	DiffDelete

	// DiffModify indicates a hunk holding both removed and added lines.
	DiffModify
)

// String returns a human-readable representation of the diff type.
func (dt DiffType) String() string {
	switch dt {
	case DiffEqual:
		return "equal"
	case DiffInsert:
		return "insert"
	case DiffDelete:
		return "delete"
	case DiffModify:
		return "modify"
	default:
		return "unknown"
	}
}

// LineDiff is one hunk of a line diff.
type LineDiff struct {
	Type DiffType

	// OldStart and NewStart are 0-based line numbers of the hunk's first line.
	OldStart int
	OldCount int
	NewStart int
	NewCount int

	// Lines are prefixed with ' ' (context), '-' (removed) or '+' (added).
	Lines []string
}

// IsEmpty returns true if this diff has no lines.
func (ld LineDiff) IsEmpty() bool {
	return len(ld.Lines) == 0
}

// DiffResult contains the complete result of a diff operation.
type DiffResult struct {
	Hunks []LineDiff

	OldLineCount int
	NewLineCount int
}

// HasChanges returns true if there are any differences.
func (dr DiffResult) HasChanges() bool {
	for _, hunk := range dr.Hunks {
		if hunk.Type != DiffEqual {
			return true
		}
	}
	return false
}

// InsertedLines returns the total number of inserted lines.
func (dr DiffResult) InsertedLines() int {
	return dr.countPrefix('+')
}

// DeletedLines returns the total number of deleted lines.
func (dr DiffResult) DeletedLines() int {
	return dr.countPrefix('-')
}

func (dr DiffResult) countPrefix(prefix byte) int {
	count := 0
	for _, hunk := range dr.Hunks {
		for _, line := range hunk.Lines {
			if len(line) > 0 && line[0] == prefix {
				count++
			}
		}
	}
	return count
}

// ComputeDiff computes a line diff between two texts. Lines are split on
// '\n' the same way a Document counts them.
func ComputeDiff(oldText, newText string, opts DiffOptions) DiffResult {
	return diffLines(strings.Split(oldText, "\n"), strings.Split(newText, "\n"), opts)
}

// DiffSnapshots computes a line diff between two buffer snapshots, reading
// them line by line.
func DiffSnapshots(oldSnap, newSnap *buffer.Snapshot, opts DiffOptions) DiffResult {
	return diffLines(snapshotLines(oldSnap), snapshotLines(newSnap), opts)
}

func snapshotLines(s *buffer.Snapshot) []string {
	n := s.LineCount()
	lines := make([]string, n)
	for i := uint32(0); i < n; i++ {
		lines[i] = s.LineText(i)
	}
	return lines
}

type editOp struct {
	op       DiffType
	oldIndex int
	newIndex int
}

// maxDistinctLines is the number of distinct lines the rune encoding can
// represent: every rune above zero except the surrogate block.
var maxDistinctLines int = utf8.MaxRune - 0x800

// diffLines computes the edit script between two line slices and groups it
// into hunks.
func diffLines(oldLines, newLines []string, opts DiffOptions) DiffResult {
	enc := newLineEncoder(opts)
	script, ok := runeScript(enc, oldLines, newLines, opts)
	if !ok {
		script = trimScript(enc, oldLines, newLines)
	}

	return DiffResult{
		Hunks:        buildHunks(oldLines, newLines, script, max(opts.ContextLines, 0)),
		OldLineCount: len(oldLines),
		NewLineCount: len(newLines),
	}
}

// runeScript encodes every distinct line as one rune and lets diffmatchpatch
// diff the rune strings, then expands the result back into line operations.
// It reports false when there are more distinct lines than runes.
func runeScript(enc *lineEncoder, oldLines, newLines []string, opts DiffOptions) ([]editOp, bool) {
	oldRunes, ok := enc.encode(oldLines)
	if !ok {
		return nil, false
	}
	newRunes, ok := enc.encode(newLines)
	if !ok {
		return nil, false
	}

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = opts.Timeout
	diffs := dmp.DiffMainRunes(oldRunes, newRunes, false)

	script := make([]editOp, 0, max(len(oldLines), len(newLines)))
	i, j := 0, 0
	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)
		for k := 0; k < n; k++ {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				script = append(script, editOp{DiffEqual, i, j})
				i++
				j++
			case diffmatchpatch.DiffDelete:
				script = append(script, editOp{DiffDelete, i, j})
				i++
			case diffmatchpatch.DiffInsert:
				script = append(script, editOp{DiffInsert, i, j})
				j++
			}
		}
	}
	return script, true
}

// trimScript keeps the common leading and trailing lines and replaces
// everything between them. The result is correct but not minimal.
func trimScript(enc *lineEncoder, oldLines, newLines []string) []editOp {
	prefix := 0
	for prefix < len(oldLines) && prefix < len(newLines) &&
		enc.normalize(oldLines[prefix]) == enc.normalize(newLines[prefix]) {
		prefix++
	}
	suffix := 0
	for suffix < len(oldLines)-prefix && suffix < len(newLines)-prefix &&
		enc.normalize(oldLines[len(oldLines)-1-suffix]) == enc.normalize(newLines[len(newLines)-1-suffix]) {
		suffix++
	}

	script := make([]editOp, 0, len(oldLines)+len(newLines)-prefix-suffix)
	for k := 0; k < prefix; k++ {
		script = append(script, editOp{DiffEqual, k, k})
	}
	for i := prefix; i < len(oldLines)-suffix; i++ {
		script = append(script, editOp{DiffDelete, i, prefix})
	}
	j := prefix
	for ; j < len(newLines)-suffix; j++ {
		script = append(script, editOp{DiffInsert, len(oldLines) - suffix, j})
	}
	for k := 0; k < suffix; k++ {
		script = append(script, editOp{DiffEqual, len(oldLines) - suffix + k, j + k})
	}
	return script
}

// lineEncoder maps normalized line text to a private rune per distinct line.
type lineEncoder struct {
	opts  DiffOptions
	index map[string]rune
}

func newLineEncoder(opts DiffOptions) *lineEncoder {
	return &lineEncoder{opts: opts, index: make(map[string]rune)}
}

// encode returns one rune per line, or false once the lines seen so far
// exceed maxDistinctLines.
func (e *lineEncoder) encode(lines []string) ([]rune, bool) {
	out := make([]rune, len(lines))
	for i, line := range lines {
		key := e.normalize(line)
		r, ok := e.index[key]
		if !ok {
			if len(e.index) >= maxDistinctLines {
				return nil, false
			}
			r = lineRune(len(e.index))
			e.index[key] = r
		}
		out[i] = r
	}
	return out, true
}

func (e *lineEncoder) normalize(line string) string {
	if e.opts.IgnoreWhitespace {
		line = strings.TrimSpace(line)
	}
	if e.opts.IgnoreCase {
		line = strings.ToLower(line)
	}
	return line
}

// lineRune skips the surrogate block so every index maps to a valid rune.
func lineRune(n int) rune {
	r := rune(n + 1)
	if r >= 0xD800 {
		r += 0x800
	}
	return r
}

// buildHunks groups changed lines with up to contextLines of surrounding
// unchanged lines. Changes closer than 2*contextLines share a hunk.
func buildHunks(oldLines, newLines []string, script []editOp, contextLines int) []LineDiff {
	type span struct{ lo, hi int }
	var spans []span
	for k, op := range script {
		if op.op == DiffEqual {
			continue
		}
		lo := max(k-contextLines, 0)
		hi := min(k+1+contextLines, len(script))
		if n := len(spans); n > 0 && lo <= spans[n-1].hi {
			spans[n-1].hi = hi
			continue
		}
		spans = append(spans, span{lo, hi})
	}

	hunks := make([]LineDiff, 0, len(spans))
	for _, s := range spans {
		first := script[s.lo]
		hunk := LineDiff{OldStart: first.oldIndex, NewStart: first.newIndex}
		var added, removed bool
		for _, op := range script[s.lo:s.hi] {
			switch op.op {
			case DiffEqual:
				hunk.Lines = append(hunk.Lines, " "+oldLines[op.oldIndex])
				hunk.OldCount++
				hunk.NewCount++
			case DiffDelete:
				hunk.Lines = append(hunk.Lines, "-"+oldLines[op.oldIndex])
				hunk.OldCount++
				removed = true
			case DiffInsert:
				hunk.Lines = append(hunk.Lines, "+"+newLines[op.newIndex])
				hunk.NewCount++
				added = true
			}
		}
		switch {
		case added && removed:
			hunk.Type = DiffModify
		case added:
			hunk.Type = DiffInsert
		default:
			hunk.Type = DiffDelete
		}
		hunks = append(hunks, hunk)
	}
	return hunks
}

// UnifiedDiff renders the result in unified diff format. It returns the
// empty string when there are no changes.
func UnifiedDiff(result DiffResult, oldName, newName string) string {
	if !result.HasChanges() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("--- " + oldName + "\n")
	sb.WriteString("+++ " + newName + "\n")

	for _, hunk := range result.Hunks {
		sb.WriteString("@@ -")
		sb.WriteString(hunkRange(hunk.OldStart, hunk.OldCount))
		sb.WriteString(" +")
		sb.WriteString(hunkRange(hunk.NewStart, hunk.NewCount))
		sb.WriteString(" @@\n")
		for _, line := range hunk.Lines {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// hunkRange formats a 0-based start as the 1-based "start,count" pair.
// An empty range names the line before it.
func hunkRange(start, count int) string {
	if count == 0 {
		return strconv.Itoa(start) + ",0"
	}
	return strconv.Itoa(start+1) + "," + strconv.Itoa(count)
}
