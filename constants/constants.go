package constants

const (
	// TmpCSVFile is the os.CreateTemp pattern for CSV files staged before a DB load.
	TmpCSVFile = "inegi_*.csv"

	// DateColumn is the canonical name of the period column in every artifact.
	DateColumn = "Fecha"

	// MissingCell is shown in previews where a cell has no value.
	MissingCell = "N/D"

	CSVExtension = ".csv"
)
