package types

// Standard table names for Cupboard.GetTable.
const (
	PeopleTable  = "people"
	BoardsTable  = "boards"
	PackingTable = "packing"
)

// StandardTableNames lists all standard table names for enumeration.
var StandardTableNames = []string{
	PeopleTable,
	BoardsTable,
	PackingTable,
}
