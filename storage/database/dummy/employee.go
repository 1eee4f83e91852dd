package dummydb

import (
	"context"
	"strings"
	"time"

	"github.com/mutsa-team6/myacademy-sub001/core"
	"github.com/mutsa-team6/myacademy-sub001/core/academy"
	"github.com/mutsa-team6/myacademy-sub001/core/employee"
)

func contains(search string, fields ...string) bool {
	search = strings.ToLower(search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

type academyRepository struct {
	db *DB
}

var _ academy.Repository = (*academyRepository)(nil) // interface compliance check

func NewAcademyRepository(db *DB) academy.Repository {
	return &academyRepository{db: db}
}

func (repo *academyRepository) CreateAcademy(ctx context.Context, a academy.Academy) (academy.Academy, error) {
	defer repo.db.lock(ctx)()

	for _, row := range repo.db.s.academies {
		if live(row.DeletedAt) && row.BusinessRegistrationNumber == a.BusinessRegistrationNumber {
			return academy.Academy{}, academy.ErrDuplicateAcademy
		}
	}
	a.ID = repo.db.nextID()
	repo.db.s.academies[a.ID] = a
	return a, nil
}

func (repo *academyRepository) GetAcademy(ctx context.Context, id int64) (academy.Academy, error) {
	defer repo.db.lock(ctx)()

	if a, ok := repo.db.s.academies[id]; ok && live(a.DeletedAt) {
		return a, nil
	}
	return academy.Academy{}, academy.ErrNotFound
}

func (repo *academyRepository) BusinessNumberExists(ctx context.Context, number string) (bool, error) {
	defer repo.db.lock(ctx)()

	for _, a := range repo.db.s.academies {
		if live(a.DeletedAt) && a.BusinessRegistrationNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (repo *academyRepository) UpdateAcademy(ctx context.Context, a academy.Academy) (academy.Academy, error) {
	defer repo.db.lock(ctx)()

	if orig, ok := repo.db.s.academies[a.ID]; !ok || !live(orig.DeletedAt) {
		return academy.Academy{}, academy.ErrNotFound
	}
	repo.db.s.academies[a.ID] = a
	return a, nil
}

// DeleteAcademy also retires the academy's employees so nobody can log into it anymore.
func (repo *academyRepository) DeleteAcademy(ctx context.Context, id int64, at time.Time) error {
	defer repo.db.lock(ctx)()

	a, ok := repo.db.s.academies[id]
	if !ok || !live(a.DeletedAt) {
		return academy.ErrNotFound
	}
	a.DeletedAt = deleted(at)
	repo.db.s.academies[id] = a

	for eid, emp := range repo.db.s.employees {
		if emp.AcademyID == id && live(emp.DeletedAt) {
			emp.DeletedAt = deleted(at)
			repo.db.s.employees[eid] = emp
		}
	}
	return nil
}

type employeeRepository struct {
	db *DB
}

var _ employee.Repository = (*employeeRepository)(nil) // interface compliance check

func NewEmployeeRepository(db *DB) employee.Repository {
	return &employeeRepository{db: db}
}

func (repo *employeeRepository) query(academyID int64, keep func(employee.Employee) bool) []employee.Employee {
	return repo.db.s.employees.rows(func(e employee.Employee) bool {
		return e.AcademyID == academyID && live(e.DeletedAt) && keep(e)
	})
}

func (repo *employeeRepository) first(academyID int64, keep func(employee.Employee) bool) (employee.Employee, error) {
	if rows := repo.query(academyID, keep); len(rows) > 0 {
		return rows[0], nil
	}
	return employee.Employee{}, employee.ErrNotFound
}

func (repo *employeeRepository) CreateEmployee(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	defer repo.db.lock(ctx)()

	if _, err := repo.first(emp.AcademyID, func(e employee.Employee) bool { return e.Account == emp.Account }); err == nil {
		return employee.Employee{}, employee.ErrDuplicateAccount
	}
	emp.ID = repo.db.nextID()
	repo.db.s.employees[emp.ID] = emp
	return emp, nil
}

func (repo *employeeRepository) GetEmployee(ctx context.Context, academyID, id int64) (employee.Employee, error) {
	defer repo.db.lock(ctx)()
	return repo.first(academyID, func(e employee.Employee) bool { return e.ID == id })
}

func (repo *employeeRepository) GetEmployeeByAccount(ctx context.Context, academyID int64, account string) (employee.Employee, error) {
	defer repo.db.lock(ctx)()
	return repo.first(academyID, func(e employee.Employee) bool { return e.Account == account })
}

func (repo *employeeRepository) GetEmployeeByEmail(ctx context.Context, academyID int64, email string) (employee.Employee, error) {
	defer repo.db.lock(ctx)()
	return repo.first(academyID, func(e employee.Employee) bool { return strings.EqualFold(e.Email, email) })
}

func (repo *employeeRepository) AccountExists(ctx context.Context, academyID int64, account string) (bool, error) {
	defer repo.db.lock(ctx)()
	_, err := repo.first(academyID, func(e employee.Employee) bool { return e.Account == account })
	return err == nil, nil
}

func (repo *employeeRepository) ListEmployees(ctx context.Context, academyID int64, filter employee.QueryFilter) ([]employee.Employee, error) {
	defer repo.db.lock(ctx)()

	return repo.query(academyID, func(e employee.Employee) bool {
		if filter.Search != "" && !contains(filter.Search, e.Account, e.Name, e.Email) {
			return false
		}
		if len(filter.Roles) == 0 {
			return true
		}
		for _, r := range filter.Roles {
			if e.Role == core.Role(strings.ToUpper(string(r))) {
				return true
			}
		}
		return false
	}), nil
}

func (repo *employeeRepository) UpdateEmployee(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	defer repo.db.lock(ctx)()

	if _, err := repo.first(emp.AcademyID, func(e employee.Employee) bool { return e.ID == emp.ID }); err != nil {
		return employee.Employee{}, err
	}
	repo.db.s.employees[emp.ID] = emp
	return emp, nil
}

func (repo *employeeRepository) DeleteEmployee(ctx context.Context, academyID, id int64, at time.Time) error {
	defer repo.db.lock(ctx)()

	emp, err := repo.first(academyID, func(e employee.Employee) bool { return e.ID == id })
	if err != nil {
		return err
	}
	emp.DeletedAt = deleted(at)
	repo.db.s.employees[id] = emp
	return nil
}
