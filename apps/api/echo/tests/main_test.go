package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/darasahq/darasa/apps/api/echo"
	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/appointment"
	"github.com/darasahq/darasa/core/message"
	"github.com/darasahq/darasa/core/user"
	dummymail "github.com/darasahq/darasa/services/email/dummy"
	logsvc "github.com/darasahq/darasa/services/logger"
	inmemdb "github.com/darasahq/darasa/storage/database/inmem"
)

const testPassword = "LolC@t123"

var (
	conf    *core.Config
	db      *inmemdb.DB
	app     Server
	mailSvc *dummymail.Service

	usrRepo  user.Repository
	apptRepo appointment.Repository
	msgRepo  message.Repository

	errMissingToken     = httpErr{Error: "missing or malformed jwt"}
	errNotAuthenticated = httpErr{Error: "user not authenticated"}
	errPermissionDenied = httpErr{Error: "permission denied"}
)

func TestMain(m *testing.M) {
	conf = core.NewConfig()
	conf.Debug = false
	conf.TestMode = true

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "TEST : ", log.LstdFlags|log.Lshortfile),
		conf,
	)
	logger.Enable(false)

	// set up DB & repos
	db = inmemdb.Open()
	usrRepo = inmemdb.NewUserRepository(db)
	apptRepo = inmemdb.NewAppointmentRepository(db)
	msgRepo = inmemdb.NewMessageRepository(db)

	// set up services
	mailSvc = dummymail.NewService(conf)
	usrSvc := user.NewServiceMock(usrRepo, mailSvc, conf)
	apptSvc := appointment.NewService(apptRepo, usrSvc)
	msgSvc := message.NewService(msgRepo, usrSvc)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	core.ParseEmailTemplates(logger)

	// set up server
	app = NewServer(
		ServerDeps{
			Conf:           conf,
			Logger:         logger,
			DisableReqLogs: true,
			UserSvc:        usrSvc,
			AppointmentSvc: apptSvc,
			MessageSvc:     msgSvc,
			Validate:       validate,
			Translator:     translator,
		},
	)

	os.Exit(m.Run())
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func resetDB(t *testing.T) {
	t.Helper()
	db.Reset()
	mailSvc.Reset()
}

// Seed helpers

func createUser(t *testing.T, name, email string, role user.Role, createdAt ...time.Time) user.User {
	t.Helper()

	usr := user.New(name, email, role)
	if err := usr.SetPassword(testPassword); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	if len(createdAt) > 0 {
		usr.CreatedAt = createdAt[0].UTC()
		usr.UpdatedAt = usr.CreatedAt
	}
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func createAppointment(
	t *testing.T,
	student, teacher user.User,
	date time.Time,
	timeSlot string,
	status appointment.Status,
	createdAt ...time.Time,
) appointment.Appointment {
	t.Helper()

	now := time.Now().UTC()
	if len(createdAt) > 0 {
		now = createdAt[0].UTC()
	}
	appt, err := apptRepo.CreateAppointment(context.Background(), appointment.Appointment{
		StudentID: student.ID,
		TeacherID: teacher.ID,
		Date:      date.UTC(),
		Time:      timeSlot,
		Subject:   "Algebra",
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateAppointment(): %v", err)
	}
	return appt
}

func createMessage(t *testing.T, sender, recipient user.User, subject, content string, createdAt ...time.Time) message.Message {
	t.Helper()

	now := time.Now().UTC()
	if len(createdAt) > 0 {
		now = createdAt[0].UTC()
	}
	msg, err := msgRepo.CreateMessage(context.Background(), message.Message{
		SenderID:    sender.ID,
		RecipientID: recipient.ID,
		Subject:     subject,
		Content:     content,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateMessage(): %v", err)
	}
	return msg
}

// HTTP helpers

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
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

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	token, err := GenerateToken(conf, usr)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
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
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
