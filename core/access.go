package core

import "sort"

// Role of an academy employee.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleStaff Role = "STAFF"
	RoleUser  Role = "USER"
)

var AllRoles = []Role{RoleAdmin, RoleStaff, RoleUser}

func (r Role) IsValid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Permission is a capability checked at the start of each service operation.
type Permission string

const (
	PermManageAcademy       Permission = "academy:manage"
	PermManageEmployees     Permission = "employee:manage"
	PermViewEmployees       Permission = "employee:view"
	PermManageMembers       Permission = "member:manage"
	PermViewMembers         Permission = "member:view"
	PermManageLectures      Permission = "lecture:manage"
	PermViewLectures        Permission = "lecture:view"
	PermManageEnrollments   Permission = "enrollment:manage"
	PermManagePayments      Permission = "payment:manage"
	PermCancelPayments      Permission = "payment:cancel"
	PermManageDiscounts     Permission = "discount:manage"
	PermManageAnnouncements Permission = "announcement:manage"
	PermViewAnnouncements   Permission = "announcement:view"
	PermManageFiles         Permission = "file:manage"
)

var permissions = map[Role][]Permission{
	RoleAdmin: {
		PermManageAcademy, PermManageEmployees, PermViewEmployees,
		PermManageMembers, PermViewMembers, PermManageLectures, PermViewLectures,
		PermManageEnrollments, PermManagePayments, PermCancelPayments, PermManageDiscounts,
		PermManageAnnouncements, PermViewAnnouncements, PermManageFiles,
	},
	RoleStaff: {
		PermViewEmployees, PermManageMembers, PermViewMembers, PermManageLectures, PermViewLectures,
		PermManageEnrollments, PermManagePayments, PermManageAnnouncements, PermViewAnnouncements,
		PermManageFiles,
	},
	RoleUser: {
		PermViewEmployees, PermViewMembers, PermViewLectures, PermViewAnnouncements,
	},
}

func init() {
	for _, perms := range permissions {
		sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
	}
}

// Can reports whether the role holds the permission.
func (r Role) Can(perm Permission) bool {
	perms := permissions[r]
	i := sort.Search(len(perms), func(i int) bool { return perms[i] >= perm })
	return i < len(perms) && perms[i] == perm
}

// Actor is the authenticated employee performing an operation.
type Actor struct {
	EmployeeID int64
	Account    string
	Name       string
	Email      string
	AcademyID  int64
	Role       Role
}

func (a Actor) IsAnonymous() bool { return a.EmployeeID == 0 }

// Authorize checks that the actor works for academyID and holds perm.
func (a Actor) Authorize(academyID int64, perm Permission) error {
	if a.IsAnonymous() {
		return ErrInvalidToken
	}
	if a.AcademyID != academyID || !a.Role.Can(perm) {
		return ErrInvalidPermission
	}
	return nil
}
