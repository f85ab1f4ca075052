package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	echoapi "github.com/darasahq/darasa/apps/api/echo"
	"github.com/darasahq/darasa/core/appointment"
	"github.com/darasahq/darasa/core/user"
)

func Test_appointmentApi_book(t *testing.T) {
	resetDB(t)

	student := createUser(t, "Hero", "hero@test.cd", user.RoleStudent)
	teacher := createUser(t, "Prof", "prof@test.cd", user.RoleTeacher)
	otherStudent := createUser(t, "Mate", "mate@test.cd", user.RoleStudent)
	admin := createUser(t, "Root", "root@test.cd", user.RoleAdmin)

	studentToken := getToken(t, student)
	reqMsg := "this field is required"
	newApptBody := func(teacherID, date string) []byte {
		return marchallObj(t, appointment.NewAppointment{
			TeacherID: teacherID,
			Date:      date,
			Time:      "10:00",
			Subject:   "Algebra",
		})
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Student required (teacher)", token: getToken(t, teacher), body: newApptBody(teacher.ID, "2026-09-15"),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied),
		},
		{
			name: "Student required (admin)", token: getToken(t, admin), body: newApptBody(teacher.ID, "2026-09-15"),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied),
		},
		{
			name: "required fields", token: studentToken, body: []byte("{}"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"teacherId": reqMsg,
				"date":      reqMsg,
				"time":      reqMsg,
				"subject":   reqMsg,
			}),
		},
		{
			name: "invalid date", token: studentToken, body: newApptBody(teacher.ID, "15/09/2026"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"date": "date must be in YYYY-MM-DD format"}),
		},
		{
			name: "unknown teacher", token: studentToken, body: newApptBody("lol", "2026-09-15"),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "user not found"}),
		},
		{
			name: "recipient must be a teacher", token: studentToken, body: newApptBody(otherStudent.ID, "2026-09-15"),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "user not found"}),
		},
		{name: "Appointment booked", token: studentToken, body: newApptBody(teacher.ID, "2026-09-15"), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/appointments"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData echoapi.AppointmentResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if respData.Message != "Appointment booked successfully." {
					t.Errorf("failed! message = %q", respData.Message)
				}
				appt := respData.Appointment
				if appt.ID == "" {
					t.Error("failed! empty appointment ID")
				}
				// a fresh booking is always pending, whatever the payload says
				if appt.Status != appointment.StatusPending {
					t.Errorf("failed! status = %v; want %v", appt.Status, appointment.StatusPending)
				}
				if appt.StudentID != student.ID || appt.TeacherID != teacher.ID {
					t.Errorf("failed! parties = (%v, %v); want (%v, %v)", appt.StudentID, appt.TeacherID, student.ID, teacher.ID)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_appointmentApi_queryOwn(t *testing.T) {
	resetDB(t)

	student := createUser(t, "Hero", "hero@test.cd", user.RoleStudent)
	otherStudent := createUser(t, "Mate", "mate@test.cd", user.RoleStudent)
	teacher := createUser(t, "Prof", "prof@test.cd", user.RoleTeacher)
	admin := createUser(t, "Root", "root@test.cd", user.RoleAdmin)

	date := func(s string) time.Time {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			t.Fatalf("time.Parse(): %v", err)
		}
		return d
	}
	late := createAppointment(t, student, teacher, date("2026-09-20"), "10:00", appointment.StatusPending)
	early := createAppointment(t, student, teacher, date("2026-09-10"), "14:00", appointment.StatusConfirmed)
	othersAppt := createAppointment(t, otherStudent, teacher, date("2026-09-15"), "09:00", appointment.StatusPending)

	// the student sees the teacher ref, the teacher sees the student refs
	late.Teacher, early.Teacher = teacher.Ref(), teacher.Ref()
	teacherEarly, teacherLate, teacherOther := early, late, othersAppt
	teacherEarly.Teacher, teacherLate.Teacher = nil, nil
	teacherEarly.Student, teacherLate.Student, teacherOther.Student = student.Ref(), student.Ref(), otherStudent.Ref()

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Student sees own, earliest first", token: getToken(t, student),
			wantCode: http.StatusOK, wantData: marchallList(t, early, late),
		},
		{
			name: "Teacher sees own, earliest first", token: getToken(t, teacher),
			wantCode: http.StatusOK, wantData: marchallList(t, teacherEarly, teacherOther, teacherLate),
		},
		{
			name: "Admins have no own listing", token: getToken(t, admin),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "admins do not have appointments of their own"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/appointments/my"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_appointmentApi_queryAll(t *testing.T) {
	resetDB(t)

	student := createUser(t, "Hero", "hero@test.cd", user.RoleStudent)
	teacher := createUser(t, "Prof", "prof@test.cd", user.RoleTeacher)
	admin := createUser(t, "Root", "root@test.cd", user.RoleAdmin)

	now := time.Now()
	older := createAppointment(t, student, teacher, now.AddDate(0, 0, 7), "10:00", appointment.StatusPending, now.Add(-time.Hour))
	newer := createAppointment(t, student, teacher, now.AddDate(0, 0, 3), "11:00", appointment.StatusConfirmed, now)

	// both parties are populated for the admin listing
	for _, appt := range []*appointment.Appointment{&older, &newer} {
		appt.Student = student.Ref()
		appt.Teacher = teacher.Ref()
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required (student)", token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied),
		},
		{
			name: "Admin required (teacher)", token: getToken(t, teacher),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied),
		},
		{
			name: "All appointments, newest first", token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallList(t, newer, older),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/appointments"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_appointmentApi_updateStatus(t *testing.T) {
	resetDB(t)

	student := createUser(t, "Hero", "hero@test.cd", user.RoleStudent)
	otherStudent := createUser(t, "Mate", "mate@test.cd", user.RoleStudent)
	teacher := createUser(t, "Prof", "prof@test.cd", user.RoleTeacher)
	otherTeacher := createUser(t, "Doc", "doc@test.cd", user.RoleTeacher)
	admin := createUser(t, "Root", "root@test.cd", user.RoleAdmin)

	date := time.Now().AddDate(0, 0, 7)
	newAppt := func(status appointment.Status) appointment.Appointment {
		return createAppointment(t, student, teacher, date, "10:00", status)
	}
	statusBody := func(status appointment.Status) []byte {
		return marchallObj(t, appointment.StatusUpdate{Status: status})
	}

	errTerminal := marchallObj(t, httpErr{Error: "appointment is in a terminal state and can no longer be updated"})
	errNotAllowed := marchallObj(t, httpErr{Error: "you are not allowed to update this appointment"})
	errInvalidStatus := marchallObj(t, httpErr{Error: "invalid appointment status"})
	errStudentRule := marchallObj(t, httpErr{Error: "students may only cancel a pending appointment"})

	tests := []httpTest{
		{name: "Auth required", path: "/appointments/lol/status", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Unknown appointment", path: "/appointments/lol/status", token: getToken(t, admin),
			body: statusBody(appointment.StatusConfirmed), wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "appointment not found"}),
		},
		{
			name: "required fields", path: "/appointments/" + newAppt(appointment.StatusPending).ID + "/status",
			token: getToken(t, admin), body: []byte("{}"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"status": "this field is required"}),
		},
		{
			name: "Unknown status value", path: "/appointments/" + newAppt(appointment.StatusPending).ID + "/status",
			token: getToken(t, admin), body: statusBody("sideways"),
			wantCode: http.StatusBadRequest, wantData: errInvalidStatus,
		},
		// student rules
		{
			name: "Student cancels own pending", path: "/appointments/" + newAppt(appointment.StatusPending).ID + "/status",
			token: getToken(t, student), body: statusBody(appointment.StatusCancelled),
			wantCode: http.StatusOK, extra: appointment.StatusCancelled,
		},
		{
			name: "Student cannot confirm", path: "/appointments/" + newAppt(appointment.StatusPending).ID + "/status",
			token: getToken(t, student), body: statusBody(appointment.StatusConfirmed),
			wantCode: http.StatusForbidden, wantData: errStudentRule,
		},
		{
			name: "Student cannot cancel confirmed", path: "/appointments/" + newAppt(appointment.StatusConfirmed).ID + "/status",
			token: getToken(t, student), body: statusBody(appointment.StatusCancelled),
			wantCode: http.StatusForbidden, wantData: errStudentRule,
		},
		{
			name: "Other student not allowed", path: "/appointments/" + newAppt(appointment.StatusPending).ID + "/status",
			token: getToken(t, otherStudent), body: statusBody(appointment.StatusCancelled),
			wantCode: http.StatusForbidden, wantData: errNotAllowed,
		},
		// teacher rules
		{
			name: "Teacher confirms own pending", path: "/appointments/" + newAppt(appointment.StatusPending).ID + "/status",
			token: getToken(t, teacher), body: statusBody(appointment.StatusConfirmed),
			wantCode: http.StatusOK, extra: appointment.StatusConfirmed,
		},
		{
			name: "Teacher completes own confirmed", path: "/appointments/" + newAppt(appointment.StatusConfirmed).ID + "/status",
			token: getToken(t, teacher), body: statusBody(appointment.StatusCompleted),
			wantCode: http.StatusOK, extra: appointment.StatusCompleted,
		},
		{
			name: "Teacher cancels own confirmed", path: "/appointments/" + newAppt(appointment.StatusConfirmed).ID + "/status",
			token: getToken(t, teacher), body: statusBody(appointment.StatusCancelled),
			wantCode: http.StatusOK, extra: appointment.StatusCancelled,
		},
		{
			name: "Teacher cannot reset to pending", path: "/appointments/" + newAppt(appointment.StatusConfirmed).ID + "/status",
			token: getToken(t, teacher), body: statusBody(appointment.StatusPending),
			wantCode: http.StatusBadRequest, wantData: errInvalidStatus,
		},
		{
			name: "Other teacher not allowed", path: "/appointments/" + newAppt(appointment.StatusPending).ID + "/status",
			token: getToken(t, otherTeacher), body: statusBody(appointment.StatusConfirmed),
			wantCode: http.StatusForbidden, wantData: errNotAllowed,
		},
		// admin rules
		{
			name: "Admin confirms any pending", path: "/appointments/" + newAppt(appointment.StatusPending).ID + "/status",
			token: getToken(t, admin), body: statusBody(appointment.StatusConfirmed),
			wantCode: http.StatusOK, extra: appointment.StatusConfirmed,
		},
		// terminal states are frozen for everyone
		{
			name: "Cancelled is frozen for the student", path: "/appointments/" + newAppt(appointment.StatusCancelled).ID + "/status",
			token: getToken(t, student), body: statusBody(appointment.StatusPending),
			wantCode: http.StatusConflict, wantData: errTerminal,
		},
		{
			name: "Completed is frozen for the teacher", path: "/appointments/" + newAppt(appointment.StatusCompleted).ID + "/status",
			token: getToken(t, teacher), body: statusBody(appointment.StatusConfirmed),
			wantCode: http.StatusConflict, wantData: errTerminal,
		},
		{
			name: "Completed is frozen even for the admin", path: "/appointments/" + newAppt(appointment.StatusCompleted).ID + "/status",
			token: getToken(t, admin), body: statusBody(appointment.StatusCancelled),
			wantCode: http.StatusConflict, wantData: errTerminal,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPut

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if wantStatus, ok := tt.extra.(appointment.Status); ok {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData echoapi.AppointmentResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if respData.Message != "Appointment status updated successfully." {
					t.Errorf("failed! message = %q", respData.Message)
				}
				if respData.Appointment.Status != wantStatus {
					t.Errorf("failed! status = %v; want %v", respData.Appointment.Status, wantStatus)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}
