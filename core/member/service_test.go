package member_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/mutsa-team6/myacademy-sub001/core"
	"github.com/mutsa-team6/myacademy-sub001/core/member"
	testutil "github.com/mutsa-team6/myacademy-sub001/tests"
)

func TestService_Teachers(t *testing.T) {
	app := testutil.NewApp(t)
	reg := app.RegisterAcademy(t, "100-00-00001")
	admin := reg.Admin.Actor()
	aid := reg.Academy.ID
	ctx := context.Background()

	teacher, err := app.MemberSvc.CreateTeacher(ctx, admin, aid, member.TeacherInput{
		Name: "  Park Jiwon ", Email: "PARK@Example.com", Subject: "Math",
	})
	require.NoError(t, err)
	assert.Equal(t, "Park Jiwon", teacher.Name)
	assert.Equal(t, "park@example.com", teacher.Email)

	_, err = app.MemberSvc.CreateTeacher(ctx, admin, aid, member.TeacherInput{Name: "Bad", Phone: "call me"})
	var verrs validator.ValidationErrors
	assert.True(t, errors.As(err, &verrs))

	app.CreateTeacher(t, aid, "Kim Sora")
	found, err := app.MemberSvc.ListTeachers(ctx, admin, aid, member.QueryFilter{Search: "park"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, teacher.ID, found[0].ID)

	updated, err := app.MemberSvc.UpdateTeacher(ctx, admin, aid, teacher.ID, member.TeacherInput{Name: "Park Jiwon", Subject: "Physics"})
	require.NoError(t, err)
	assert.Equal(t, "Physics", updated.Subject)

	require.NoError(t, app.MemberSvc.DeleteTeacher(ctx, admin, aid, teacher.ID))
	_, err = app.MemberSvc.GetTeacher(ctx, admin, aid, teacher.ID)
	assert.Equal(t, member.ErrTeacherNotFound, errors.Cause(err))
}

func TestService_DeleteParent(t *testing.T) {
	app := testutil.NewApp(t)
	reg := app.RegisterAcademy(t, "100-00-00001")
	admin := reg.Admin.Actor()
	aid := reg.Academy.ID
	ctx := context.Background()

	parent := app.CreateParent(t, aid, "Mother Choi", "choi@example.com")
	child1 := app.CreateStudent(t, aid, "Jisoo", parent)
	child2 := app.CreateStudent(t, aid, "Jimin", parent)
	unrelated := app.CreateStudent(t, aid, "Minji")

	children, err := app.MemberSvc.ListStudents(ctx, admin, aid, member.QueryFilter{ParentID: parent.ID})
	require.NoError(t, err)
	assert.Len(t, children, 2)

	require.NoError(t, app.MemberSvc.DeleteParent(ctx, admin, aid, parent.ID))

	_, err = app.MemberSvc.GetParent(ctx, admin, aid, parent.ID)
	assert.Equal(t, member.ErrParentNotFound, errors.Cause(err))
	for _, id := range []int64{child1.ID, child2.ID, unrelated.ID} {
		s, err := app.MemberSvc.GetStudent(ctx, admin, aid, id)
		require.NoError(t, err)
		assert.False(t, s.ParentID.Valid)
	}

	err = app.MemberSvc.DeleteParent(ctx, admin, aid, parent.ID)
	assert.Equal(t, member.ErrParentNotFound, errors.Cause(err))
}

func TestService_Students(t *testing.T) {
	app := testutil.NewApp(t)
	reg := app.RegisterAcademy(t, "100-00-00001")
	other := app.RegisterAcademy(t, "200-00-00002")
	admin := reg.Admin.Actor()
	aid := reg.Academy.ID
	ctx := context.Background()

	foreignParent := app.CreateParent(t, other.Academy.ID, "Father Lee", "lee@example.com")

	tests := []struct {
		name    string
		actor   core.Actor
		in      member.StudentInput
		wantErr error
	}{
		{"parent of another academy", admin, member.StudentInput{Name: "Minji", ParentID: null.Int64From(foreignParent.ID)}, member.ErrParentNotFound},
		{"user role", app.CreateEmployee(t, aid, "viewer", core.RoleUser).Actor(), member.StudentInput{Name: "Minji"}, core.ErrInvalidPermission},
		{"admin of another academy", other.Admin.Actor(), member.StudentInput{Name: "Minji"}, core.ErrInvalidPermission},
		{"valid", admin, member.StudentInput{Name: "Minji", Grade: 3}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := app.MemberSvc.CreateStudent(ctx, tt.actor, aid, tt.in)
			assert.Equal(t, tt.wantErr, errors.Cause(err))
		})
	}

	_, err := app.MemberSvc.CreateStudent(ctx, admin, aid, member.StudentInput{Name: "Too old", Grade: 13})
	var verrs validator.ValidationErrors
	assert.True(t, errors.As(err, &verrs))

	students, err := app.MemberSvc.ListStudents(ctx, admin, aid, member.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, students, 1)

	// a student of one academy is invisible to another
	_, err = app.MemberSvc.GetStudent(ctx, other.Admin.Actor(), other.Academy.ID, students[0].ID)
	assert.Equal(t, member.ErrStudentNotFound, errors.Cause(err))
}

func TestService_Notes(t *testing.T) {
	app := testutil.NewApp(t)
	reg := app.RegisterAcademy(t, "100-00-00001")
	staff := app.CreateEmployee(t, reg.Academy.ID, "staff", core.RoleStaff)
	aid := reg.Academy.ID
	ctx := context.Background()

	s := app.CreateStudent(t, aid, "Minji")

	note, err := app.MemberSvc.AddNote(ctx, staff.Actor(), aid, s.ID, member.NoteInput{Body: " allergic to peanuts "})
	require.NoError(t, err)
	assert.Equal(t, "allergic to peanuts", note.Body)
	assert.Equal(t, staff.ID, note.EmployeeID)

	_, err = app.MemberSvc.AddNote(ctx, staff.Actor(), aid, 999, member.NoteInput{Body: "nobody"})
	assert.Equal(t, member.ErrStudentNotFound, errors.Cause(err))

	notes, err := app.MemberSvc.ListNotes(ctx, reg.Admin.Actor(), aid, s.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)

	require.NoError(t, app.MemberSvc.DeleteNote(ctx, staff.Actor(), aid, note.ID))
	notes, err = app.MemberSvc.ListNotes(ctx, reg.Admin.Actor(), aid, s.ID)
	require.NoError(t, err)
	assert.Empty(t, notes)

	err = app.MemberSvc.DeleteNote(ctx, staff.Actor(), aid, note.ID)
	assert.Equal(t, member.ErrNoteNotFound, errors.Cause(err))
}
