package tuner_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalnine/agentbench/internal/tuner"
)

const sample = `# ZeroClaw config
default_provider = "openrouter"
api_key = "sk-live"

[autonomy]
level = "supervised"
auto_approve = [ "file_read",'shell' ]   # keep

[memory]
backend = "sqlite"
auto_save = false

[[channels]]
name = "cli"
`

func TestParseRoundTrip(t *testing.T) {
	inputs := []string{
		sample,
		"",
		"no_newline = 1",
		"[a]\r\nk = 1\r\n",
		"[a]\nlist = [\n  \"x\",\n  \"y\",\n]\n[b]\n",
		"  # indented comment\n\n\n[x]\n",
		"notes = \"\"\"\n[autonomy]\nfoo\n\"\"\"\n",
		"a.b = '''\n[x]\n'''",
	}
	for _, in := range inputs {
		if diff := cmp.Diff(in, tuner.Parse(in).String()); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestMultilineStringsAreNotSections(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"basic", "notes = \"\"\"\n[autonomy]\nfoo\n\"\"\"\n"},
		{"literal", "notes = '''\n[autonomy]\n'''\n"},
		{"escaped quote", "notes = \"\"\"a \\\"\"\"\n[autonomy]\n\"\"\"\n"},
		{"extra closing quotes", "notes = \"\"\"\n[autonomy]\n\"\"\"\"\"\n"},
		{"inside array", "prompts = [\n  \"\"\"\n]\n[autonomy]\n\"\"\",\n]\n"},
		{"dotted key", "agent.prompt = \"\"\"\n[autonomy]\n\"\"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tuner.Validate(tt.text))
			doc := tuner.Parse(tt.text)
			assert.Nil(t, doc.Section("autonomy"))
			assert.Equal(t, tt.text, doc.String())
		})
	}
}

func TestEnsureSectionAfterMultilineString(t *testing.T) {
	in := "notes = \"\"\"\n[autonomy]\nfoo\n\"\"\"\n"
	doc := tuner.Parse(in)
	doc.EnsureSection("autonomy").EnsureListItem("auto_approve", "memory_store")

	want := in + "\n[autonomy]\nauto_approve = [\"memory_store\"]\n"
	if diff := cmp.Diff(want, doc.String()); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestSectionLookup(t *testing.T) {
	doc := tuner.Parse(sample)
	require.NotNil(t, doc.Section("autonomy"))
	require.NotNil(t, doc.Section("memory"))
	assert.Nil(t, doc.Section("channels"), "array tables are never targets")
	assert.Nil(t, doc.Section("integration"))

	v, ok := doc.Section("memory").Value("backend")
	assert.True(t, ok)
	assert.Equal(t, `"sqlite"`, v)
}

func TestEnsureListItem(t *testing.T) {
	doc := tuner.Parse(sample)
	autonomy := doc.Section("autonomy")

	assert.True(t, autonomy.EnsureListItem("auto_approve", "memory_store"))
	v, _ := autonomy.Value("auto_approve")
	assert.Equal(t, `["file_read", "shell", "memory_store"]`, v)

	assert.False(t, autonomy.EnsureListItem("auto_approve", "memory_store"))
	assert.False(t, autonomy.EnsureListItem("auto_approve", "shell"))
}

func TestEnsureListItemMultiline(t *testing.T) {
	in := "[autonomy]\nauto_approve = [\n  \"a\",\n  \"b\",\n]\nlevel = \"full\"\n"
	doc := tuner.Parse(in)
	assert.True(t, doc.Section("autonomy").EnsureListItem("auto_approve", "c"))
	want := "[autonomy]\nauto_approve = [\"a\", \"b\", \"c\"]\nlevel = \"full\"\n"
	if diff := cmp.Diff(want, doc.String()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestEnsureListItemMissingKey(t *testing.T) {
	in := "[autonomy]\nlevel = \"full\"\n\n[memory]\n"
	doc := tuner.Parse(in)
	assert.True(t, doc.Section("autonomy").EnsureListItem("auto_approve", "memory_store"))
	want := "[autonomy]\nlevel = \"full\"\nauto_approve = [\"memory_store\"]\n\n[memory]\n"
	if diff := cmp.Diff(want, doc.String()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestSetBool(t *testing.T) {
	doc := tuner.Parse(sample)
	memory := doc.Section("memory")
	assert.True(t, memory.SetBool("auto_save", true))
	v, _ := memory.Value("auto_save")
	assert.Equal(t, "true", v)
	assert.False(t, memory.SetBool("auto_save", true))

	keep := tuner.Parse("[m]\n  flag = true # on\n")
	assert.False(t, keep.Section("m").SetBool("flag", true))
	assert.Equal(t, "[m]\n  flag = true # on\n", keep.String())

	indented := tuner.Parse("[m]\n  flag = false\n")
	assert.True(t, indented.Section("m").SetBool("flag", true))
	assert.Equal(t, "[m]\n  flag = true\n", indented.String())
}

func TestEnsureSection(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty document", "", "[integration]\nopenclaw_sync = true\n"},
		{"trailing newline", "a = 1\n", "a = 1\n\n[integration]\nopenclaw_sync = true\n"},
		{"no trailing newline", "a = 1", "a = 1\n\n[integration]\nopenclaw_sync = true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := tuner.Parse(tt.in)
			assert.True(t, doc.EnsureSection("integration").SetBool("openclaw_sync", true))
			if diff := cmp.Diff(tt.want, doc.String()); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestInsertAfterUnterminatedLastLine(t *testing.T) {
	doc := tuner.Parse("[memory]\nbackend = \"sqlite\"")
	assert.True(t, doc.Section("memory").SetBool("auto_save", true))
	assert.Equal(t, "[memory]\nbackend = \"sqlite\"\nauto_save = true\n", doc.String())
}

func TestParseList(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{`["a", "b"]`, []string{"a", "b"}},
		{`[ 'a' ,"b",]`, []string{"a", "b"}},
		{"[\n \"a\",\n \"b\"\n]", []string{"a", "b"}},
		{`["a"] # comment`, []string{"a"}},
		{`[a, "b"]`, []string{"a", "b"}},
		{`[]`, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := tuner.ParseList(tt.raw)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, tuner.Validate(sample))
	assert.Error(t, tuner.Validate("[a\nb = "))
}
