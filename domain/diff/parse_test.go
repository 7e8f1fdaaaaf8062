package diff_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/autocommit/domain/diff"
)

const sampleDiff = `diff --git a/main.go b/main.go
index 3b18e51..a2c4f1e 100644
--- a/main.go
+++ b/main.go
@@ -3,0 +4,2 @@ import "fmt"
+	fmt.Println("hello")
+	return
@@ -10 +11,0 @@ func main() {
-	old()
diff --git a/docs/data/readme.md b/docs/data/readme.md
new file mode 100644
index 0000000..e69de29
--- /dev/null
+++ b/docs/data/readme.md
@@ -0,0 +1 @@
+# Title
`

func TestParse_Segments(t *testing.T) {
	doc := diff.Parse(sampleDiff)

	segments := doc.Segments()
	require.Len(t, segments, 2)

	first := segments[0]
	assert.Equal(t, "main.go", first.Path())
	assert.Equal(t, "main.go", first.OldPath())
	assert.Equal(t, "main.go", first.NewPath())

	lines := first.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, diff.Added, lines[0].Sign())
	assert.Equal(t, "\tfmt.Println(\"hello\")", lines[0].Text(), "trailing whitespace trimmed, leading kept")
	assert.Equal(t, diff.Added, lines[1].Sign())
	assert.Equal(t, diff.Removed, lines[2].Sign())
	assert.Equal(t, "\told()", lines[2].Text())

	second := segments[1]
	assert.Equal(t, "docs/data/readme.md", second.Path(), "only the leading a/ is stripped")
	assert.Equal(t, "/dev/null", second.OldPath())
	require.Len(t, second.Lines(), 1)
	assert.Equal(t, "# Title", second.Lines()[0].Text())
}

func TestParse_MarkersAreNotContent(t *testing.T) {
	doc := diff.Parse("diff --git a/x b/x\n--- a/x\n+++ b/x\n")

	segments := doc.Segments()
	require.Len(t, segments, 1)
	assert.Empty(t, segments[0].Lines())
	assert.Equal(t, diff.Stats{}, doc.Stats())
}

func TestParse_IgnoresLinesBeforeFirstHeader(t *testing.T) {
	doc := diff.Parse("+stray\n-stray\n")
	assert.True(t, doc.IsEmpty())
}

func TestParse_ShortHeader(t *testing.T) {
	doc := diff.Parse("diff --git\n+added\n")
	segments := doc.Segments()
	require.Len(t, segments, 1)
	assert.Equal(t, "", segments[0].Path())
	assert.Len(t, segments[0].Lines(), 1)
}

func TestParse_PathWithSpaces(t *testing.T) {
	raw := "diff --git a/my file.txt b/my file.txt\n" +
		"--- a/my file.txt\n" +
		"+++ b/my file.txt\n" +
		"@@ -1 +1 @@\n" +
		"-old\n" +
		"+new\n"

	segments := diff.Parse(raw).Segments()
	require.Len(t, segments, 1)
	assert.Equal(t, "my file.txt", segments[0].Path())
	assert.Equal(t, "my file.txt", segments[0].OldPath())
	assert.Len(t, segments[0].Lines(), 2)
}

func TestParse_RenamedPathWithSpacesUsesOldMarker(t *testing.T) {
	raw := "diff --git a/old name.go b/new name.go\n" +
		"--- a/old name.go\n" +
		"+++ b/new name.go\n" +
		"+x\n"

	segments := diff.Parse(raw).Segments()
	require.Len(t, segments, 1)
	assert.Equal(t, "old name.go", segments[0].Path())
	assert.Equal(t, "new name.go", segments[0].NewPath())
}

func TestParse_NewFileWithSpacesUsesNewMarker(t *testing.T) {
	raw := "diff --git a/notes v2.md b/notes v3.md\n" +
		"--- /dev/null\n" +
		"+++ b/notes v3.md\n" +
		"+x\n"

	segments := diff.Parse(raw).Segments()
	require.Len(t, segments, 1)
	assert.Equal(t, "notes v3.md", segments[0].Path())
}

func TestParse_RenameWithoutSpacesKeepsHeaderPath(t *testing.T) {
	raw := "diff --git a/old.go b/new.go\n" +
		"--- a/old.go\n" +
		"+++ b/new.go\n"

	segments := diff.Parse(raw).Segments()
	require.Len(t, segments, 1)
	assert.Equal(t, "old.go", segments[0].Path())
}

func TestParse_Empty(t *testing.T) {
	doc := diff.Parse("")
	assert.True(t, doc.IsEmpty())
	assert.Equal(t, "", diff.Render(doc))
}

func TestParse_CRLF(t *testing.T) {
	doc := diff.Parse("diff --git a/w.txt b/w.txt\r\n+line\r\n")
	segments := doc.Segments()
	require.Len(t, segments, 1)
	assert.Equal(t, "w.txt", segments[0].Path())
	assert.Equal(t, "line", segments[0].Lines()[0].Text())
}

func TestDocument_PathsAndStats(t *testing.T) {
	doc := diff.Parse(sampleDiff)
	assert.Equal(t, []string{"main.go", "docs/data/readme.md"}, doc.Paths())
	assert.Equal(t, diff.Stats{Additions: 3, Deletions: 1}, doc.Stats())
}

func TestRender(t *testing.T) {
	doc := diff.Parse(sampleDiff)

	want := strings.Join([]string{
		"# main.go",
		"- main.go",
		"+ main.go",
		"+\tfmt.Println(\"hello\")",
		"+\treturn",
		"-\told()",
		"",
		"# docs/data/readme.md",
		"- /dev/null",
		"+ docs/data/readme.md",
		"+# Title",
	}, "\n")

	assert.Equal(t, want, diff.Render(doc))
}

func TestRender_IsDeterministic(t *testing.T) {
	doc := diff.Parse(sampleDiff)
	assert.Equal(t, diff.Render(doc), diff.Render(diff.Parse(sampleDiff)))
}

func TestLength_CountsCharacters(t *testing.T) {
	assert.Equal(t, 3, diff.Length("abc"))
	assert.Equal(t, 2, diff.Length("変更"))
}
