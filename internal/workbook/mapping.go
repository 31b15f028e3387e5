package workbook

import "fmt"

// CPD data sheet headers.
const (
	HeaderCPDName        = "CPD Name"
	HeaderCPDFormat      = "CPD Format"
	HeaderCPDFocus       = "CPD Focus"
	HeaderLocation       = "Location"
	HeaderYear           = "Year"
	HeaderStartDate      = "Start Date (YYY-MM-DD)"
	HeaderEndDate        = "End Date (YYY-MM-DD)"
	HeaderDurationDays   = "Duration in Days"
	HeaderDurationHours  = "Duration in Hours"
	HeaderPFNumber       = "Teacher PF Number"
	HeaderFirstName      = "Teacher First Name"
	HeaderLastName       = "Teacher Last Name"
	HeaderGender         = "Gender"
	HeaderDisability     = "Disability"
	HeaderYearsTeaching  = "Approximate Years Teaching"
	HeaderAttendanceRate = "Attendance Rate"
	HeaderAttendance80   = "80% Attendance"
	HeaderCompletion     = "Statement of Completion"
	HeaderSchool         = "School"
)

// MaxAttendedDays is the number of "Attended Day N" columns in the template.
const MaxAttendedDays = 15

// columnMapping maps CPD data headers to ListObject row attributes.
var columnMapping = map[string]string{
	HeaderCPDName:        "CPDName",
	HeaderCPDFormat:      "CPDFormat",
	HeaderCPDFocus:       "CPDFocus",
	HeaderLocation:       "Location",
	HeaderYear:           "Year",
	HeaderStartDate:      "StartDate",
	HeaderEndDate:        "EndDate",
	HeaderDurationDays:   "DurationDays",
	HeaderDurationHours:  "DurationHours",
	HeaderPFNumber:       "TeacherPFNumber",
	HeaderFirstName:      "TeacherFirstName",
	HeaderLastName:       "TeacherLastName",
	HeaderGender:         "Gender",
	HeaderDisability:     "Disability",
	HeaderYearsTeaching:  "ApproximateYearsTeaching",
	HeaderAttendanceRate: "AttendanceRate",
	HeaderAttendance80:   "Percent80Attendance",
	HeaderCompletion:     "StatementCompletion",
	HeaderSchool:         "School",
}

func init() {
	for i := 1; i <= MaxAttendedDays; i++ {
		columnMapping[AttendedDayHeader(i)] = fmt.Sprintf("AttendedDay%d", i)
	}
}

// AttendedDayHeader returns the header of the n-th attendance column (1-based).
func AttendedDayHeader(n int) string {
	return fmt.Sprintf("Attended Day %d", n)
}

// AttributeFor returns the attribute name for a trimmed header.
func AttributeFor(header string) (string, bool) {
	attr, ok := columnMapping[header]
	return attr, ok
}

func isDateHeader(header string) bool {
	return header == HeaderStartDate || header == HeaderEndDate
}
