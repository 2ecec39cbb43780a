package roster

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrEmptyRoster      = errors.New("roster has no employees")
)

// Roster is the fixed, ordered set of employees configured into the system.
// It is immutable after construction.
type Roster struct {
	employees []Employee
	index     map[int]int
}

type document struct {
	Employees []Employee `yaml:"employees"`
}

func New(employees []Employee) (*Roster, error) {
	if len(employees) == 0 {
		return nil, ErrEmptyRoster
	}
	r := &Roster{
		employees: make([]Employee, 0, len(employees)),
		index:     make(map[int]int, len(employees)),
	}
	for _, emp := range employees {
		emp.Name = strings.TrimSpace(emp.Name)
		if emp.ID <= 0 {
			return nil, fmt.Errorf("roster employee %q: id must be positive", emp.Name)
		}
		if emp.Name == "" {
			return nil, fmt.Errorf("roster employee %d: name is required", emp.ID)
		}
		if _, dup := r.index[emp.ID]; dup {
			return nil, fmt.Errorf("roster employee %d: duplicate id", emp.ID)
		}
		r.index[emp.ID] = len(r.employees)
		r.employees = append(r.employees, emp)
	}
	return r, nil
}

// Load reads a YAML roster document. An empty path yields the default roster.
func Load(path string) (*Roster, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Roster, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	return New(doc.Employees)
}

// Default returns the built-in six-person sales roster.
func Default() *Roster {
	r, err := New([]Employee{
		{ID: 1, Name: "Мика", Role: RoleSales},
		{ID: 2, Name: "Павел", Role: RoleSales, Capabilities: Capabilities{CanEvaluate: true, CanSelfEvaluate: true, CanInputWeekly: true}},
		{ID: 3, Name: "Аймен", Role: RoleSales},
		{ID: 4, Name: "Дарья", Role: RoleGTM, Capabilities: Capabilities{CanEvaluate: true, CanSelfEvaluate: true, CanInputWeekly: true}},
		{ID: 5, Name: "Андрей", Role: RoleDirector, Capabilities: Capabilities{CanEvaluate: true, CanSelfEvaluate: true}},
		{ID: 6, Name: "Венера", Role: RoleFinanceDirector, Capabilities: Capabilities{CanEvaluate: true, CanSelfEvaluate: true, CanInputMonthly: true}},
	})
	if err != nil {
		panic(err)
	}
	return r
}

// Employees returns a copy of the roster in configured order.
func (r *Roster) Employees() []Employee {
	out := make([]Employee, len(r.employees))
	copy(out, r.employees)
	return out
}

func (r *Roster) Len() int {
	return len(r.employees)
}

func (r *Roster) ByID(id int) (Employee, error) {
	idx, ok := r.index[id]
	if !ok {
		return Employee{}, ErrEmployeeNotFound
	}
	return r.employees[idx], nil
}

func (r *Roster) Contains(id int) bool {
	_, ok := r.index[id]
	return ok
}

// Evaluators returns employees allowed to submit peer ratings.
func (r *Roster) Evaluators() []Employee {
	var out []Employee
	for _, emp := range r.employees {
		if emp.CanEvaluate {
			out = append(out, emp)
		}
	}
	return out
}
