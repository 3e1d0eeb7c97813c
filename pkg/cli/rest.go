package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/kitir/kitir/pkg/cli/internal/flags"
	"github.com/kitir/kitir/pkg/cli/internal/output"
	"github.com/kitir/kitir/pkg/cli/internal/parse"
	"github.com/kitir/kitir/pkg/metrics"
	"github.com/kitir/kitir/pkg/restful"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Send REST requests and log them as transactions",
	Long: `Send REST requests and log them as transactions.

Each call writes <log dir>/<name>/request/<id>.txt (the request body, or the
URL when there is none) and <log dir>/<name>/response/<id>.txt (the response
body, pretty-printed when it is JSON). With --full the files are JSON records
with headers, status and timing instead.`,
}

// restFlags holds the flags of one verb command.
type restFlags struct {
	baseURL         string
	data            string
	jsonBody        string
	headers         flags.StringSlice
	query           flags.StringSlice
	timeout         time.Duration
	name            string
	logDir          string
	transactionName string
	transactionID   string
	noSaveRequest   bool
	noSaveResponse  bool
	full            bool
	fullRequest     bool
	fullResponse    bool
	onlyNotOK       bool
	ignoreTimeout   bool
	ignoreAborted   bool
	anonymous       bool
	selectPath      string
	metricsFile     string
	interactive     bool
}

// restResult is the --json output of a verb command.
type restResult struct {
	Method        string              `json:"method"`
	URL           string              `json:"url"`
	Status        int                 `json:"status"`
	OK            bool                `json:"ok"`
	TransactionID string              `json:"transactionId"`
	Elapsed       string              `json:"elapsed"`
	Headers       map[string][]string `json:"headers"`
	Body          any                 `json:"body"`
}

func newRestVerbCmd(method string) *cobra.Command {
	f := &restFlags{}
	verb := strings.ToLower(method)
	cmd := &cobra.Command{
		Use:   verb + " [url]",
		Short: "Send a " + method + " request",
		Args:  cobra.MaximumNArgs(1),
		Example: fmt.Sprintf(`  kitir rest %s https://api.example.com/users/1
  kitir rest %s /users --base-url https://api.example.com --transaction-name list-users
  kitir rest %s URL -H "Authorization: Bearer $TOKEN" --select '$.items[*].id'`, verb, verb, verb),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			if f.interactive {
				var err error
				if target, err = promptRequest(method, target, f); err != nil {
					return err
				}
			}
			if target == "" {
				return errors.New("url is required (or use --interactive)")
			}
			return runRest(cmd, method, target, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.baseURL, "base-url", "", "Base URL that relative request URLs are joined to")
	fl.StringVarP(&f.data, "data", "d", "", "Request body; @file reads it from a file")
	fl.StringVar(&f.jsonBody, "json-body", "", "JSON request body, sent with Content-Type application/json; @file reads it from a file")
	fl.VarP(&f.headers, "header", "H", `Request header "Key: value" (repeatable)`)
	fl.Var(&f.query, "query", "Query parameter key=value (repeatable)")
	fl.DurationVar(&f.timeout, "timeout", 0, "Request timeout (default from config, 2m0s)")
	fl.StringVar(&f.name, "name", "", "Client name, the log sub-directory (default from config, \"rest\")")
	fl.StringVar(&f.logDir, "log-dir", "", "Transaction log root (default from config)")
	fl.StringVar(&f.transactionName, "transaction-name", "", "Name inserted into the transaction id")
	fl.StringVar(&f.transactionID, "transaction-id", "", "Use this transaction id instead of a generated one")
	fl.BoolVar(&f.noSaveRequest, "no-save-request", false, "Do not write the request artifact")
	fl.BoolVar(&f.noSaveResponse, "no-save-response", false, "Do not write the response artifact")
	fl.BoolVar(&f.full, "full", false, "Write full JSON records for request and response")
	fl.BoolVar(&f.fullRequest, "full-request", false, "Write a full JSON record for the request")
	fl.BoolVar(&f.fullResponse, "full-response", false, "Write a full JSON record for the response")
	fl.BoolVar(&f.onlyNotOK, "only-not-ok", false, "Only log the transaction when the status is not 2xx")
	fl.BoolVar(&f.ignoreTimeout, "ignore-timeout", false, "Treat a timeout as no response instead of an error")
	fl.BoolVar(&f.ignoreAborted, "ignore-aborted", false, "Treat an aborted connection as no response instead of an error")
	fl.BoolVar(&f.anonymous, "anonymous", false, "Send without the session's cookies and headers")
	fl.StringVar(&f.selectPath, "select", "", "Print only the values at this JSONPath of the response")
	fl.StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics for the call to this file")
	fl.BoolVarP(&f.interactive, "interactive", "i", false, "Prompt for the request")
	return cmd
}

// promptRequest asks for the URL, body and transaction name.
func promptRequest(method, target string, f *restFlags) (string, error) {
	fields := []huh.Field{
		huh.NewInput().
			Title(method + " which URL?").
			Placeholder("https://api.example.com/users").
			Value(&target).
			Validate(func(s string) error {
				if s == "" {
					return errors.New("url is required")
				}
				return nil
			}),
		huh.NewInput().
			Title("Transaction name (optional)").
			Value(&f.transactionName),
	}
	if method != http.MethodGet && method != http.MethodDelete {
		fields = append(fields, huh.NewText().
			Title("Request Body (JSON)").
			Placeholder(`{"name": "ada"}`).
			Value(&f.jsonBody))
	}
	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return "", err
	}
	return target, nil
}

func readArg(v string) ([]byte, error) {
	if path, ok := strings.CutPrefix(v, "@"); ok {
		return os.ReadFile(path)
	}
	return []byte(v), nil
}

func (f *restFlags) transport(cmd *cobra.Command) (*restful.Transport, error) {
	header, err := parse.Headers(f.headers)
	if err != nil {
		return nil, err
	}
	query, err := parse.Query(f.query)
	if err != nil {
		return nil, err
	}
	t := &restful.Transport{
		Header:        header,
		Query:         query,
		Timeout:       f.timeout,
		Anonymous:     f.anonymous,
		IgnoreTimeout: f.ignoreTimeout,
		IgnoreAborted: f.ignoreAborted,
	}
	if cmd.Flags().Changed("data") {
		if t.Body, err = readArg(f.data); err != nil {
			return nil, err
		}
	}
	if f.jsonBody != "" {
		data, err := readArg(f.jsonBody)
		if err != nil {
			return nil, err
		}
		if !json.Valid(data) {
			return nil, errors.New("--json-body is not valid JSON")
		}
		t.JSON = json.RawMessage(data)
	}
	return t, nil
}

func (f *restFlags) logOptions(cmd *cobra.Command) *restful.LogOptions {
	l := &restful.LogOptions{
		TransactionID:   f.transactionID,
		TransactionName: f.transactionName,
	}
	changed := cmd.Flags().Changed
	if f.noSaveRequest {
		l.SaveRequest = restful.Bool(false)
	}
	if f.noSaveResponse {
		l.SaveResponse = restful.Bool(false)
	}
	if f.full || changed("full-request") {
		l.FullRequest = restful.Bool(f.full || f.fullRequest)
	}
	if f.full || changed("full-response") {
		l.FullResponse = restful.Bool(f.full || f.fullResponse)
	}
	if changed("only-not-ok") {
		l.OnlyNotOK = restful.Bool(f.onlyNotOK)
	}
	return l
}

func (f *restFlags) client(m *metrics.Metrics) *restful.Client {
	name := cfg.Name
	if f.name != "" {
		name = f.name
	}
	root := cfg.LogDir
	if f.logDir != "" {
		root = f.logDir
	}
	return restful.New(f.baseURL,
		restful.WithName(name),
		restful.WithLogRoot(root),
		restful.WithTimeout(cfg.Timeout),
		restful.WithDefaults(cfg.LogDefaults()),
		restful.WithLogger(logger),
		restful.WithMetrics(m),
	)
}

func runRest(cmd *cobra.Command, method, target string, f *restFlags) error {
	t, err := f.transport(cmd)
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	if f.metricsFile != "" {
		m = metrics.New()
	}
	c := f.client(m)
	defer c.Close()

	resp, err := c.Do(cmd.Context(), method, target, t, f.logOptions(cmd))
	if m != nil {
		if werr := m.WriteTextfile(f.metricsFile); werr != nil {
			output.Warn("could not write metrics file: %v", werr)
		}
	}
	if err != nil {
		return err
	}
	if resp == nil {
		fmt.Fprintln(os.Stderr, "no response (ignored timeout or aborted connection)")
		return nil
	}

	if err := printResponse(resp, method, f.selectPath); err != nil {
		return err
	}
	if !resp.OK() {
		fmt.Fprintf(os.Stderr, "%s %s: %s (transaction %s)\n", method, resp.URL(), resp.Status, resp.TransactionID)
		return errSilent
	}
	logger.Info("transaction logged", "id", resp.TransactionID, "status", resp.StatusCode, "dir", c.LogDir())
	return nil
}

func printResponse(resp *restful.Response, method, selectPath string) error {
	if selectPath != "" {
		return printSelection(resp.Content, selectPath)
	}
	if !jsonOutput {
		body := resp.Text()
		fmt.Print(body)
		if body != "" && !strings.HasSuffix(body, "\n") {
			fmt.Println()
		}
		return nil
	}

	out := restResult{
		Method:        method,
		URL:           resp.URL(),
		Status:        resp.StatusCode,
		OK:            resp.OK(),
		TransactionID: resp.TransactionID,
		Elapsed:       resp.Elapsed.String(),
		Headers:       resp.Header,
	}
	if json.Valid(resp.Content) {
		out.Body = json.RawMessage(resp.Content)
	} else if len(resp.Content) > 0 {
		out.Body = resp.Text()
	}
	return output.JSON(out)
}

// printSelection prints each value at path, strings raw and everything
// else as JSON.
func printSelection(body []byte, path string) error {
	x, err := jp.ParseString(path)
	if err != nil {
		return fmt.Errorf("invalid --select path %q: %w", path, err)
	}
	data, err := oj.Parse(body)
	if err != nil {
		return fmt.Errorf("--select: response is not JSON: %w", err)
	}
	for _, v := range x.Get(data) {
		if s, ok := v.(string); ok {
			fmt.Println(s)
			continue
		}
		fmt.Println(oj.JSON(v, &oj.Options{Sort: true}))
	}
	return nil
}

func init() {
	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		restCmd.AddCommand(newRestVerbCmd(method))
	}
	rootCmd.AddCommand(restCmd)
}
