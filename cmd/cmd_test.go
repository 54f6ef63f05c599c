package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"sales_browser/api"
	"sales_browser/internal/sales"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newBackend(t *testing.T, n int) (string, *sales.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router, svc := api.NewServer(zaptest.NewLogger(t))
	require.NoError(t, svc.Seed(n, 1))
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv.URL, svc
}

func resetFlags() {
	cfgFile, baseURL, verbose, noColor = "", "", false, false
	listName, listMinDate, listMaxDate = "", "", ""
	listPages, listAll, listJSON = 1, false, false
	createSeller, createDeals, createAmount, createVisited, createDate = "", 0, 0, 0, ""
	deleteYes = false
	serveAddr, serveSeed, serveSeedCount = "", false, 0
}

func runCLI(t *testing.T, url, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	resetFlags()

	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--base-url", url, "--no-color"}, args...))

	err := Execute(context.Background())
	return out.String(), errOut.String(), err
}

func totalSales(t *testing.T, svc *sales.Service) int64 {
	t.Helper()
	page, err := svc.FindSales(sales.Query{Size: 100, Sort: sales.DefaultSort})
	require.NoError(t, err)
	return page.TotalElements
}

func TestList_FirstPage(t *testing.T) {
	url, _ := newBackend(t, 12)

	out, _, err := runCLI(t, url, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Showing 10 of 12 items")
	assert.NotContains(t, out, "All items loaded")
}

func TestList_AllPages(t *testing.T) {
	url, _ := newBackend(t, 25)

	out, _, err := runCLI(t, url, "", "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Showing 25 of 25 items")
	assert.Contains(t, out, "All items loaded")
}

func TestList_JSON(t *testing.T) {
	url, _ := newBackend(t, 12)

	out, _, err := runCLI(t, url, "", "list", "--pages", "2", "--json")
	require.NoError(t, err)

	var got []sales.Sale
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got, 12)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Amount, got[i].Amount)
	}
}

func TestList_RejectsBadDate(t *testing.T) {
	url, _ := newBackend(t, 1)

	_, _, err := runCLI(t, url, "", "list", "--min-date", "2024-13-40")
	require.Error(t, err)
}

func TestList_BackendDown(t *testing.T) {
	_, errOut, err := runCLI(t, "http://127.0.0.1:1", "", "list")
	require.Error(t, err)
	assert.Contains(t, errOut, "Failed to load sales")
}

func TestCreate(t *testing.T) {
	url, svc := newBackend(t, 2)

	out, _, err := runCLI(t, url, "", "create", "--seller", "Ana", "--deals", "2", "--amount", "10.5", "--date", "2024-06-01")
	require.NoError(t, err)
	assert.Contains(t, out, "Sale 3 created.")
	assert.Contains(t, out, "2024-06-01")
	assert.Equal(t, int64(3), totalSales(t, svc))
}

func TestDelete(t *testing.T) {
	url, svc := newBackend(t, 3)

	out, _, err := runCLI(t, url, "", "delete", "2", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Sale deleted.")
	assert.Equal(t, int64(2), totalSales(t, svc))
}

func TestDelete_Declined(t *testing.T) {
	url, svc := newBackend(t, 3)

	out, _, err := runCLI(t, url, "n\n", "delete", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Delete sale 2?")
	assert.Contains(t, out, "Cancelled.")
	assert.Equal(t, int64(3), totalSales(t, svc))
}

func TestDelete_Unknown(t *testing.T) {
	url, _ := newBackend(t, 1)

	_, errOut, err := runCLI(t, url, "", "delete", "99", "--yes")
	require.Error(t, err)
	assert.Contains(t, errOut, "Failed to delete the sale!")
}

func TestNotify(t *testing.T) {
	url, _ := newBackend(t, 1)

	out, _, err := runCLI(t, url, "", "notify", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "SMS sent successfully!")

	_, errOut, err := runCLI(t, url, "", "notify", "42")
	require.Error(t, err)
	assert.Contains(t, errOut, "Failed to send SMS.")
}

func TestBrowse_Session(t *testing.T) {
	url, svc := newBackend(t, 12)

	script := strings.Join([]string{
		"more",
		"more",
		"show 1",
		"edit 1 seller=Peter Parker deals=7",
		"edit 1 amount=-3",
		"notify 1",
		"delete 2",
		"y",
		"show 2",
		"quit",
	}, "\n") + "\n"

	out, errOut, err := runCLI(t, url, script, "browse")
	require.NoError(t, err)

	assert.Contains(t, out, "Showing 10 of 12 items")
	assert.Contains(t, out, "Showing 12 of 12 items")
	assert.Contains(t, out, "All items loaded")
	assert.Contains(t, out, "Sale updated successfully!")
	assert.Contains(t, errOut, "amount: must not be negative")
	assert.Contains(t, out, "SMS sent successfully!")
	assert.Contains(t, out, "Sale deleted.")
	assert.Contains(t, out, "Showing 11 of 11 items")
	assert.Contains(t, errOut, "Sale 2 is not in the loaded list")

	page, err := svc.FindSales(sales.Query{Size: 100, Sort: sales.DefaultSort, Filters: sales.Filters{Name: "peter parker"}})
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, int64(1), page.Content[0].ID)
	assert.Equal(t, 7, page.Content[0].Deals)
	assert.Equal(t, int64(11), totalSales(t, svc))
}

func TestBrowse_DeleteBeforeLoadingTheRest(t *testing.T) {
	url, svc := newBackend(t, 25)
	first, err := svc.FindSales(sales.Query{Size: 10, Sort: sales.DefaultSort})
	require.NoError(t, err)
	victim := first.Content[0].ID

	script := strings.Join([]string{
		"delete " + strconv.FormatInt(victim, 10),
		"y",
		"more",
		"more",
		"more",
		"more",
		"quit",
	}, "\n") + "\n"

	out, _, err := runCLI(t, url, script, "browse")
	require.NoError(t, err)

	assert.Contains(t, out, "Sale deleted.")
	assert.Contains(t, out, "Showing 9 of 24 items")
	assert.Contains(t, out, "Showing 24 of 24 items")
	assert.Contains(t, out, "All items loaded")
	assert.NotContains(t, out, "Showing 23 of 24 items")
}

func TestParseAssignments(t *testing.T) {
	got, err := parseAssignments("seller=Bruce Wayne amount=12,5")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"seller": "Bruce Wayne", "amount": "12,5"}, got)

	_, err = parseAssignments("visited=3")
	assert.Error(t, err)

	_, err = parseAssignments("oops")
	assert.Error(t, err)
}
