package entities

// Employee is a row of the employees table backing the query service
type Employee struct {
	ID         int64  `json:"id" db:"id"`
	Name       string `json:"name" db:"name"`
	Age        int    `json:"age" db:"age"`
	Department string `json:"department" db:"department"`
}

// SeedEmployees are the rows inserted when the database is initialized
var SeedEmployees = []Employee{
	{Name: "Alice", Age: 30, Department: "HR"},
	{Name: "Bob", Age: 25, Department: "Engineering"},
	{Name: "Charlie", Age: 35, Department: "Marketing"},
}
