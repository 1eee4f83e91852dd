package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/mutsa-team6/myacademy-sub001/core/academy"
	"github.com/mutsa-team6/myacademy-sub001/core/employee"
)

const liveAcademy = "SELECT * FROM academy WHERE deleted_at IS NULL"

var academyConstraints = constraintErrors{
	"academy_business_number_uniq": academy.ErrDuplicateAcademy,
}

type academyRepository struct {
	db *DB
}

var _ academy.Repository = (*academyRepository)(nil) // interface compliance check

func NewAcademyRepository(db *DB) academy.Repository {
	return &academyRepository{db: db}
}

func (repo *academyRepository) CreateAcademy(ctx context.Context, a academy.Academy) (academy.Academy, error) {
	q := insertQuery("academy", "name", "address", "phone", "owner", "business_registration_number",
		"email", "password_hash", "created_at", "updated_at")
	id, err := repo.db.insert(ctx, academyConstraints, q, a)
	if err != nil {
		return academy.Academy{}, err
	}
	a.ID = id
	return a, nil
}

func (repo *academyRepository) GetAcademy(ctx context.Context, id int64) (academy.Academy, error) {
	var a academy.Academy
	err := repo.db.get(ctx, &a, academy.ErrNotFound, liveAcademy+" AND id = $1", id)
	return a, err
}

func (repo *academyRepository) BusinessNumberExists(ctx context.Context, number string) (bool, error) {
	return repo.db.exists(ctx, liveAcademy+" AND business_registration_number = $1", number)
}

func (repo *academyRepository) UpdateAcademy(ctx context.Context, a academy.Academy) (academy.Academy, error) {
	q := `UPDATE academy SET name = :name, address = :address, phone = :phone, owner = :owner,
		email = :email, password_hash = :password_hash, updated_at = :updated_at
		WHERE id = :id AND deleted_at IS NULL`
	if err := repo.db.update(ctx, academyConstraints, academy.ErrNotFound, q, a); err != nil {
		return academy.Academy{}, err
	}
	return a, nil
}

// DeleteAcademy also retires the academy's employees so nobody can log into it anymore.
func (repo *academyRepository) DeleteAcademy(ctx context.Context, id int64, at time.Time) error {
	return repo.db.InTx(ctx, func(ctx context.Context) error {
		err := repo.db.execAffect(ctx, academy.ErrNotFound,
			"UPDATE academy SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL", id, at)
		if err != nil {
			return err
		}
		_, err = repo.db.exec(ctx).ExecContext(ctx,
			"UPDATE employee SET deleted_at = $2 WHERE academy_id = $1 AND deleted_at IS NULL", id, at)
		return errors.Wrap(err, "retiring employees")
	})
}

const liveEmployee = "SELECT * FROM employee WHERE deleted_at IS NULL"

var employeeConstraints = constraintErrors{
	"employee_account_uniq": employee.ErrDuplicateAccount,
}

type employeeRepository struct {
	db *DB
}

var _ employee.Repository = (*employeeRepository)(nil) // interface compliance check

func NewEmployeeRepository(db *DB) employee.Repository {
	return &employeeRepository{db: db}
}

func (repo *employeeRepository) CreateEmployee(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	q := insertQuery("employee", "academy_id", "account", "password_hash", "name", "email", "phone",
		"role", "last_login_at", "created_at", "updated_at")
	id, err := repo.db.insert(ctx, employeeConstraints, q, emp)
	if err != nil {
		return employee.Employee{}, err
	}
	emp.ID = id
	return emp, nil
}

func (repo *employeeRepository) GetEmployee(ctx context.Context, academyID, id int64) (employee.Employee, error) {
	var emp employee.Employee
	err := repo.db.get(ctx, &emp, employee.ErrNotFound, liveEmployee+" AND academy_id = $1 AND id = $2", academyID, id)
	return emp, err
}

func (repo *employeeRepository) GetEmployeeByAccount(ctx context.Context, academyID int64, account string) (employee.Employee, error) {
	var emp employee.Employee
	err := repo.db.get(ctx, &emp, employee.ErrNotFound,
		liveEmployee+" AND academy_id = $1 AND account = $2", academyID, account)
	return emp, err
}

func (repo *employeeRepository) GetEmployeeByEmail(ctx context.Context, academyID int64, email string) (employee.Employee, error) {
	var emp employee.Employee
	err := repo.db.get(ctx, &emp, employee.ErrNotFound,
		liveEmployee+" AND academy_id = $1 AND lower(email) = lower($2) ORDER BY id LIMIT 1", academyID, email)
	return emp, err
}

func (repo *employeeRepository) AccountExists(ctx context.Context, academyID int64, account string) (bool, error) {
	return repo.db.exists(ctx, liveEmployee+" AND academy_id = $1 AND account = $2", academyID, account)
}

func (repo *employeeRepository) ListEmployees(ctx context.Context, academyID int64, filter employee.QueryFilter) ([]employee.Employee, error) {
	w := newWhere(academyID)
	if filter.Search != "" {
		w.add("(account ILIKE ? OR name ILIKE ? OR email ILIKE ?)", like(filter.Search))
	}
	if len(filter.Roles) > 0 {
		roles := make([]string, len(filter.Roles))
		for i, r := range filter.Roles {
			roles[i] = strings.ToUpper(string(r))
		}
		w.add("role = ANY(?)", pq.Array(roles))
	}

	emps := make([]employee.Employee, 0)
	err := repo.db.list(ctx, &emps, liveEmployee+" AND academy_id = $1"+w.sql()+" ORDER BY id", w.args...)
	return emps, err
}

func (repo *employeeRepository) UpdateEmployee(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	q := updateQuery("employee", "password_hash", "name", "email", "phone", "role", "last_login_at", "updated_at")
	if err := repo.db.update(ctx, employeeConstraints, employee.ErrNotFound, q, emp); err != nil {
		return employee.Employee{}, err
	}
	return emp, nil
}

func (repo *employeeRepository) DeleteEmployee(ctx context.Context, academyID, id int64, at time.Time) error {
	return repo.db.execAffect(ctx, employee.ErrNotFound, softDeleteQuery("employee"), academyID, id, at)
}
