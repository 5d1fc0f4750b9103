package service

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"postboard/app/repositories"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPI = "https://api.test"

func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("POSTBOARD_API_URL", testAPI)
	t.Setenv("POSTBOARD_LOG_LEVEL", "error")

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func mockAPI() {
	gock.New(testAPI).Get("/users$").Reply(http.StatusOK).JSON([]map[string]any{
		{"id": 1, "name": "Leanne Graham", "username": "Bret"},
		{"id": 2, "name": "Ervin Howell", "username": "Antonette"},
	})
	gock.New(testAPI).Get("/posts").MatchParam("userId", "^1$").Reply(http.StatusOK).JSON([]map[string]any{
		{"id": 7, "userId": 1, "title": "qui est esse", "body": "est rerum tempore"},
	})
	gock.New(testAPI).Get("/users/1$").Reply(http.StatusOK).JSON(map[string]any{
		"id": 1, "name": "Leanne Graham",
		"company": map[string]any{"name": "Romaguera-Crona", "catchPhrase": "Multi-layered client-server neural-net"},
	})
	gock.New(testAPI).Get("/comments").MatchParam("postId", "^7$").Reply(http.StatusOK).JSON([]map[string]any{
		{"id": 31, "postId": 7, "name": "ut quas", "email": "Hayden@althea.biz", "body": "fugit"},
	})
}

func TestVersionCmd(t *testing.T) {
	out, err := runCmd(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "postboard version "+CliVersion+"\n", out)
}

func TestUnknownCmd(t *testing.T) {
	_, err := runCmd(t, "", "bogus")
	assert.Error(t, err)
}

func TestUsersCmd(t *testing.T) {
	defer gock.Off()
	mockAPI()

	out, err := runCmd(t, "", "users")
	require.NoError(t, err)
	assert.Equal(t, "1\tLeanne Graham\tBret\n2\tErvin Howell\tAntonette\n", out)
}

func TestRenderCmd(t *testing.T) {
	defer gock.Off()
	mockAPI()

	out, err := runCmd(t, "", "render", "--user", "1")
	require.NoError(t, err)
	assert.Contains(t, out, `<option value="1" selected="">Leanne Graham</option>`)
	assert.Contains(t, out, "<h2>qui est esse</h2>")
	assert.Contains(t, out, `data-post-id="7" class="comments hide"`)
	assert.True(t, gock.IsDone())
}

func TestRenderCmd_Text(t *testing.T) {
	defer gock.Off()
	mockAPI()

	out, err := runCmd(t, "", "render", "--user", "1", "--text")
	require.NoError(t, err)
	assert.Contains(t, out, "qui est esse")
	assert.Contains(t, out, "Author: Leanne Graham with Romaguera-Crona")
	assert.Contains(t, out, "From: Hayden@althea.biz")
	assert.NotContains(t, out, "<")
}

func TestStateCmds(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "badger")
	t.Setenv("POSTBOARD_BADGER_PATH", dbPath)

	db, err := OpenDB(dbPath)
	require.NoError(t, err)
	repo, err := repositories.NewBadgerToggleRepository(db, "s1")
	require.NoError(t, err)
	require.NoError(t, repo.SetVisible(5, true))
	require.NoError(t, db.Close())

	backup := filepath.Join(dir, "backup.db")
	out, err := runCmd(t, "", "state", "backup", "--out", backup)
	require.NoError(t, err)
	assert.Contains(t, out, "backed up successfully")

	out, err = runCmd(t, "n\n", "state", "clean")
	require.NoError(t, err)
	assert.Contains(t, out, "Operation cancelled")
	assert.DirExists(t, dbPath)

	out, err = runCmd(t, "y\n", "state", "clean")
	require.NoError(t, err)
	assert.Contains(t, out, "cleaned successfully")
	assert.NoDirExists(t, dbPath)

	out, err = runCmd(t, "", "state", "restore", backup)
	require.NoError(t, err)
	assert.Contains(t, out, "restored successfully")

	db, err = OpenDB(dbPath)
	require.NoError(t, err)
	defer db.Close()
	repo, err = repositories.NewBadgerToggleRepository(db, "s1")
	require.NoError(t, err)
	visible, err := repo.Visible(5)
	require.NoError(t, err)
	assert.True(t, visible)
}

func TestStateCmds_NoDatabase(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("POSTBOARD_BADGER_PATH", filepath.Join(dir, "missing"))

	out := filepath.Join(dir, "backup.db")
	_, err := runCmd(t, "", "state", "backup", "--out", out)
	assert.ErrorIs(t, err, ErrNoDatabase)
	assert.NoFileExists(t, out)

	_, err = runCmd(t, "", "state", "clean", "--yes")
	assert.ErrorIs(t, err, ErrNoDatabase)

	empty := filepath.Join(dir, "empty.db")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	_, err = runCmd(t, "", "state", "restore", empty)
	assert.Error(t, err)
}
