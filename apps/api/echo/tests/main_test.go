package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	. "github.com/trezcool/masomo-calendar/apps/api/echo"
	"github.com/trezcool/masomo-calendar/core"
	"github.com/trezcool/masomo-calendar/core/session"
	"github.com/trezcool/masomo-calendar/core/user"
	logsvc "github.com/trezcool/masomo-calendar/services/logger"
	metricsvc "github.com/trezcool/masomo-calendar/services/metrics"
	recurrencesvc "github.com/trezcool/masomo-calendar/services/recurrence"
	sqlxrepos "github.com/trezcool/masomo-calendar/storage/database/sqlx"
	testutil "github.com/trezcool/masomo-calendar/tests"
)

var (
	conf = testutil.Conf()

	teacher = user.User{ID: "t1", Name: "Mwalimu", Username: "mwalimu", Email: "mwalimu@test.cd", Roles: []string{user.RoleTeacher}}
	student = user.User{ID: "s1", Name: "Mwanafunzi", Username: "mwanafunzi", Email: "mwanafunzi@test.cd", Roles: []string{user.RoleStudent}}

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func setup(t *testing.T) (*Server, *session.Service) {
	db := testutil.PrepareDB(t)
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)

	reg := prometheus.NewRegistry()
	metrics, err := metricsvc.NewPrometheus(reg)
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}

	svc := session.NewService(session.Deps{
		Instances:   sqlxrepos.NewInstanceRepository(db),
		Recurrences: sqlxrepos.NewRecurrenceRepository(db),
		Authorizer:  user.Permissions{},
		Expander:    recurrencesvc.NewRRuleExpander(conf),
		Logger:      logger,
		Metrics:     metrics,
	})

	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)
	session.InitValidators(validate, translator)

	server := NewServer(ServerDeps{
		Conf:       conf,
		Logger:     logger,
		SessionSvc: svc,
		Validate:   validate,
		Translator: translator,
		Metrics:    promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
	return server, svc
}

type httpErr struct {
	Error  string          `json:"error"`
	Notice *session.Notice `json:"notice,omitempty"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, usr user.User) string {
	token, err := GenerateToken(conf, GetUserClaims(conf, usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func unmarshall(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("unmarshall() failed: %v; body %s", err, rec.Body.String())
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
