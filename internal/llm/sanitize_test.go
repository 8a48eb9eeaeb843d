package llm

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kpcollege/studentportal/internal/entity"
)

func TestParseStudentPayloadCoercesFields(t *testing.T) {
	content := []byte(`{"records":[
		{"Name":" Anil Kumar ","rollNo":"24KP1A0401","dept":"ece","year":1,"total_fees":"1,20,000"},
		{"name":"Bhavana","department":"CSE","year":"2","is_lateral_entry":"yes","paid_fees":45000.5}
	]}`)
	out, err := ParseStudentPayload(content, nil)
	if err != nil {
		t.Fatalf("ParseStudentPayload: %v", err)
	}
	if len(out.Malformed) != 0 {
		t.Fatalf("unexpected malformed rows: %+v", out.Malformed)
	}
	want := []entity.ParsedStudent{
		{Name: "Anil Kumar", RollNumber: "24KP1A0401", Department: "ECE", Year: "1", TotalFees: 120000},
		{Name: "Bhavana", Department: "CSE", Year: "2", IsLateralEntry: true, PaidFees: 45000.5},
	}
	if diff := cmp.Diff(want, out.Students); diff != "" {
		t.Fatalf("students mismatch (-want +got):\n%s", diff)
	}
}

func TestParseStudentPayloadRejectsBadRowsOnly(t *testing.T) {
	content := []byte(`{"records":[
		{"name":"OK","department":"ECE","year":"1"},
		{"name":"","department":"ECE","year":"1"},
		{"name":"BadYear","department":"ECE","year":"5"},
		{"department":"ECE","year":"2"}
	]}`)
	out, err := ParseStudentPayload(content, nil)
	if err != nil {
		t.Fatalf("ParseStudentPayload: %v", err)
	}
	if len(out.Students) != 1 || out.Students[0].Name != "OK" {
		t.Fatalf("want 1 good row, got %+v", out.Students)
	}
	if len(out.Malformed) != 3 {
		t.Fatalf("want 3 malformed rows, got %+v", out.Malformed)
	}
}

func TestParseStudentPayloadAcceptsBareArray(t *testing.T) {
	out, err := ParseStudentPayload([]byte(`[{"name":"A","department":"IT","year":"3"}]`), nil)
	if err != nil {
		t.Fatalf("ParseStudentPayload: %v", err)
	}
	if len(out.Students) != 1 {
		t.Fatalf("want 1 student, got %d", len(out.Students))
	}
}

func TestParseStudentPayloadFatalOnBrokenJSON(t *testing.T) {
	if _, err := ParseStudentPayload([]byte(`{"records": [oops`), nil); err == nil {
		t.Fatal("expected error for unparseable envelope")
	}
}

func TestParseAttendancePayloadCanonicalizesMonth(t *testing.T) {
	content := []byte(`{"records":[
		{"roll_number":"24KP1A0401","month":"jANuary","year":"2024","present":20,"total":22.0},
		{"roll_number":"24KP1A0402","month":"Sometime","year":2024,"present":1,"total":2},
		{"roll_number":"24KP1A0403","month":"March","year":2024,"present":-1,"total":2}
	]}`)
	out, err := ParseAttendancePayload(content, nil)
	if err != nil {
		t.Fatalf("ParseAttendancePayload: %v", err)
	}
	want := []entity.ParsedAttendanceRecord{
		{RollNumber: "24KP1A0401", Month: "January", Year: 2024, Present: 20, Total: 22},
	}
	if diff := cmp.Diff(want, out.Records); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
	if len(out.Malformed) != 2 {
		t.Fatalf("want 2 malformed rows (bad month, negative present), got %+v", out.Malformed)
	}
}

func TestParseAttendancePayloadEmpty(t *testing.T) {
	out, err := ParseAttendancePayload([]byte(`{"records":[]}`), nil)
	if err != nil {
		t.Fatalf("ParseAttendancePayload: %v", err)
	}
	if len(out.Records) != 0 || len(out.Malformed) != 0 {
		t.Fatalf("want empty result, got %+v", out)
	}
}
