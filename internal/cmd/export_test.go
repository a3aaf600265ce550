package cmd_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagu-org/sqljson/internal/cmd"
	"github.com/dagu-org/sqljson/internal/cmn/config"
	"github.com/dagu-org/sqljson/internal/test"
)

func setupShop(t *testing.T) (test.Command, string) {
	t.Helper()
	th := test.SetupCommand(t)
	db := th.CreateSQLite(t, "shop.db",
		`CREATE TABLE items (id INTEGER, name TEXT, created DATE, data BLOB)`,
		`INSERT INTO items VALUES (1, 'apple', '2024-01-02', x'01')`,
		`INSERT INTO items VALUES (2, 'pear', NULL, NULL)`,
	)
	return th, db
}

func TestExportCommand(t *testing.T) {
	t.Parallel()
	th, db := setupShop(t)

	jobs := th.CreateFile(t, "jobs.properties", fmt.Sprintf(`
.url=sqlite:%s
items.sql=SELECT id, name, created FROM items ORDER BY id
items.out=%s
names.sql=SELECT name FROM items ORDER BY id
names.out=%s
`, db, th.Path("out/items.json"), th.Path("out/names.json")))

	th.RunCommand(t, cmd.Export(), test.CmdTest{
		Args:        []string{config.AppSlug, "--date-format", "iso", jobs},
		ExpectedOut: []string{"Job finished"},
	})

	assert.Equal(t,
		`[{"id":1,"name":"apple","created":"2024-01-02"},{"id":2,"name":"pear","created":null}]`,
		th.ReadFile(t, "out/items.json"))
	assert.Equal(t, `[{"name":"apple"},{"name":"pear"}]`, th.ReadFile(t, "out/names.json"))
}

func TestExportCommand_Flags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantOut string
		want    map[string]string
		missing []string
	}{
		{
			name: "Pretty",
			args: []string{"--pretty", "2"},
			want: map[string]string{
				"a.json": "[\n  {\n    \"id\": 1\n  },\n  {\n    \"id\": 2\n  }\n]",
			},
		},
		{
			name: "SelectJob",
			args: []string{"-j", "b"},
			want: map[string]string{
				"b.json": `[{"name":"apple"},{"name":"pear"}]`,
			},
			missing: []string{"a.json"},
		},
		{
			name:    "Debug",
			args:    []string{"-d", "-j", "c"},
			wantOut: "Warning: Unsupported column, data, type BLOB",
			want: map[string]string{
				"c.json": `[{"id":1},{"id":2}]`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			th, db := setupShop(t)

			jobs := th.CreateFile(t, "jobs.properties", fmt.Sprintf(`
.url=sqlite:%[1]s
a.sql=SELECT id FROM items ORDER BY id
a.out=%[2]s
b.sql=SELECT name FROM items ORDER BY id
b.out=%[3]s
c.sql=SELECT id, data FROM items ORDER BY id
c.out=%[4]s
`, db, th.Path("a.json"), th.Path("b.json"), th.Path("c.json")))

			args := append([]string{config.AppSlug}, tt.args...)
			output := th.RunCommand(t, cmd.Export(), test.CmdTest{Args: append(args, jobs)})
			assert.Contains(t, output, tt.wantOut)

			for file, content := range tt.want {
				assert.Equal(t, content, th.ReadFile(t, file))
			}
			for _, file := range tt.missing {
				assert.NoFileExists(t, th.Path(file))
			}
		})
	}
}

func TestExportCommand_Quiet(t *testing.T) {
	t.Parallel()
	th, db := setupShop(t)

	jobs := th.CreateFile(t, "jobs.properties", fmt.Sprintf("items.url=%s\nitems.out=%s\n", db, th.Path("items.json")))

	output := th.RunCommand(t, cmd.Export(), test.CmdTest{
		Args: []string{config.AppSlug, "-q", "--date-format", "iso", jobs},
	})
	assert.NotContains(t, output, "Job finished")
	assert.FileExists(t, th.Path("items.json"))
}

func TestExportCommand_Failure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		wantOut  []string
		exists   []string
		notExist []string
	}{
		{
			name:     "HaltOnError",
			wantOut:  []string{"Error while running job b: failed to execute query"},
			exists:   []string{"a.json"},
			notExist: []string{"b.json", "c.json"},
		},
		{
			name:     "ContinueOnError",
			args:     []string{"--continue-on-error"},
			wantOut:  []string{"Error while running job b: failed to execute query"},
			exists:   []string{"a.json", "c.json"},
			notExist: []string{"b.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			th, db := setupShop(t)

			jobs := th.CreateFile(t, "jobs.properties", fmt.Sprintf(`
.url=sqlite:%[1]s
a.sql=SELECT id FROM items
a.out=%[2]s
b.sql=SELECT * FROM missing
b.out=%[3]s
c.sql=SELECT name FROM items
c.out=%[4]s
`, db, th.Path("a.json"), th.Path("b.json"), th.Path("c.json")))

			args := append([]string{config.AppSlug}, tt.args...)
			output, err := th.RunCommandWithError(t, cmd.Export(), test.CmdTest{Args: append(args, jobs)})
			require.Error(t, err)

			for _, want := range tt.wantOut {
				assert.Contains(t, output, want)
			}
			for _, file := range tt.exists {
				assert.FileExists(t, th.Path(file))
			}
			for _, file := range tt.notExist {
				assert.NoFileExists(t, th.Path(file))
			}
		})
	}
}

func TestExportCommand_MissingURL(t *testing.T) {
	t.Parallel()
	th := test.SetupCommand(t)

	jobs := th.CreateFile(t, "jobs.properties", fmt.Sprintf("items.sql=SELECT 1\nitems.out=%s\n", th.Path("items.json")))

	output, err := th.RunCommandWithError(t, cmd.Export(), test.CmdTest{Args: []string{config.AppSlug, jobs}})
	require.Error(t, err)
	assert.Contains(t, output, "Error while running job items: job items: url is required")
	assert.NoFileExists(t, th.Path("items.json"))
}

func TestExportCommand_DotEnv(t *testing.T) {
	t.Parallel()
	th, db := setupShop(t)

	th.CreateFile(t, "conf/.env", "SHOP_DB="+db+"\n")
	jobs := th.CreateFile(t, "conf/jobs.properties", fmt.Sprintf("items.url=sqlite:${SHOP_DB}\nitems.sql=SELECT id FROM items ORDER BY id\nitems.out=%s\n", th.Path("items.json")))

	th.RunCommand(t, cmd.Export(), test.CmdTest{
		Args: []string{config.AppSlug, "--dotenv", ".env", jobs},
	})
	assert.Equal(t, `[{"id":1},{"id":2}]`, th.ReadFile(t, "items.json"))
}

func TestExportCommand_Args(t *testing.T) {
	t.Parallel()
	th := test.SetupCommand(t)

	tests := []struct {
		name    string
		args    []string
		wantOut string
	}{
		{"MissingJobFile", []string{config.AppSlug}, "accepts 1 arg(s), received 0"},
		{"UnknownFlag", []string{config.AppSlug, "--bogus", "jobs.properties"}, "unknown flag: --bogus"},
		{"UnreadableJobFile", []string{config.AppSlug, th.Path("missing.properties")}, "failed to load job file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			output, err := th.RunCommandWithError(t, cmd.Export(), test.CmdTest{Args: tt.args})
			require.Error(t, err)
			assert.Contains(t, output, tt.wantOut)
		})
	}
}
