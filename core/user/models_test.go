package user

import "testing"

func TestNew_roleInvariants(t *testing.T) {
	tests := []struct {
		name         string
		role         Role
		wantProfile  bool
		wantApproved bool
	}{
		{name: "student", role: RoleStudent},
		{name: "teacher", role: RoleTeacher, wantProfile: true, wantApproved: true},
		{name: "admin", role: RoleAdmin, wantApproved: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr := New("Hero", "hero@test.cd", tt.role)
			if got := usr.TeacherProfile != nil; got != tt.wantProfile {
				t.Errorf("TeacherProfile set = %v; want %v", got, tt.wantProfile)
			}
			if usr.AdminApproved != tt.wantApproved {
				t.Errorf("AdminApproved = %v; want %v", usr.AdminApproved, tt.wantApproved)
			}
		})
	}
}

func TestApplyRoleChange(t *testing.T) {
	t.Run("promotion to teacher creates an empty profile", func(t *testing.T) {
		usr := New("Hero", "hero@test.cd", RoleStudent)
		usr.ApplyRoleChange(RoleTeacher)

		if usr.Role != RoleTeacher {
			t.Fatalf("Role = %v; want %v", usr.Role, RoleTeacher)
		}
		if usr.TeacherProfile == nil {
			t.Fatal("TeacherProfile not created")
		}
		if len(usr.TeacherProfile.Subjects) != 0 || len(usr.TeacherProfile.Availability) != 0 {
			t.Error("new profile is not empty")
		}
		if !usr.AdminApproved {
			t.Error("promoted user not approved")
		}
	})

	t.Run("demotion from teacher drops the profile", func(t *testing.T) {
		usr := New("Prof", "prof@test.cd", RoleTeacher)
		usr.TeacherProfile.Department = "Mathematics"
		usr.ApplyRoleChange(RoleStudent)

		if usr.Role != RoleStudent {
			t.Fatalf("Role = %v; want %v", usr.Role, RoleStudent)
		}
		if usr.TeacherProfile != nil {
			t.Error("TeacherProfile kept after demotion")
		}
	})

	t.Run("same role is a no-op", func(t *testing.T) {
		usr := New("Prof", "prof@test.cd", RoleTeacher)
		usr.TeacherProfile.Department = "Mathematics"
		usr.ApplyRoleChange(RoleTeacher)

		if usr.TeacherProfile == nil || usr.TeacherProfile.Department != "Mathematics" {
			t.Error("profile lost on no-op role change")
		}
	})
}
