package teachers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pacific-emis/emisctl/internal/emisapi"
)

func TestSaveLoad_RoundTripKeepsRecordsVerbatim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cached-data", "all_teachers.json")
	records := []emisapi.Record{
		emisapi.Record(`{"tID":1,"tPayroll":1234567,"tGiven":"Teata","tSurname":"Kabure","tSex":"F","tDOB":"1980-01-01"}`),
		emisapi.Record(`{"tID":2,"tPayroll":"0099","tGiven":"Ioane","tSurname":"Tekee","tSex":"M"}`),
		emisapi.Record(`{"tID":3,"tPayroll":null,"tGiven":"No","tSurname":"Payroll","tSex":"M"}`),
	}
	require.NoError(t, Save(path, records))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "tDOB")
	assert.Contains(t, string(raw), "1980-01-01")

	list, err := Load(path)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, Teacher{Payroll: "1234567", Given: "Teata", Surname: "Kabure", Sex: "F"}, list[0])
	assert.Equal(t, Text("0099"), list[1].Payroll)
	assert.Equal(t, Text(""), list[2].Payroll)
}

func TestFilterValid(t *testing.T) {
	list := []Teacher{
		{Payroll: "1", Given: "A", Surname: "B", Sex: "M"},
		{Payroll: "", Given: "A", Surname: "B", Sex: "M"},
		{Payroll: "2", Given: " ", Surname: "B", Sex: "F"},
		{Payroll: "3", Given: "C", Surname: "D", Sex: ""},
	}
	valid := FilterValid(list)
	require.Len(t, valid, 1)
	assert.Equal(t, Text("1"), valid[0].Payroll)
}

func TestGender(t *testing.T) {
	assert.Equal(t, "Male", Teacher{Sex: "M"}.Gender())
	assert.Equal(t, "Female", Teacher{Sex: "F"}.Gender())
	assert.Equal(t, "Female", Teacher{Sex: "x"}.Gender())
}

func TestText_Float(t *testing.T) {
	var v struct {
		P Text `json:"p"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"p":12.5}`), &v))
	assert.Equal(t, Text("12.5"), v.P)
}

func TestLoad_MissingCache(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
