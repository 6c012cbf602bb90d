package ops

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hpungsan/degreeplan/internal/db"
	"github.com/hpungsan/degreeplan/internal/errors"
)

const renamedCatalogJSON = `[
  {"major": "  computer   sciences ", "degreeType": "BS", "requirementGroups": [
    {"groupId": "9", "ruleType": "min_credits", "requiredCredits": 3, "courses": ["COMP SCI 400"]}
  ]},
  {"major": "Statistics", "requirementGroups": []}
]`

func TestImportCatalog_ErrorModeCollisionIsAtomic(t *testing.T) {
	ctx := context.Background()
	database := seededDB(t)

	out, err := ImportCatalog(ctx, database, ImportInput{
		Path: writeCatalogFile(t, "more.json", renamedCatalogJSON),
	})
	if err != nil {
		t.Fatalf("ImportCatalog failed: %v", err)
	}
	if out.Imported != 0 || out.Skipped != 2 {
		t.Errorf("Imported=%d Skipped=%d, want 0 and 2", out.Imported, out.Skipped)
	}
	if len(out.Errors) != 1 {
		t.Fatalf("len(Errors) = %d, want 1", len(out.Errors))
	}
	if out.Errors[0].Index != 0 || out.Errors[0].Code != string(errors.ErrNameAlreadyExists) {
		t.Errorf("Errors[0] = %+v", out.Errors[0])
	}

	// Statistics must not have been written.
	majors, err := db.ListMajors(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if len(majors) != 3 {
		t.Errorf("len(majors) = %d, want 3", len(majors))
	}
}

func TestImportCatalog_ReplaceMode(t *testing.T) {
	ctx := context.Background()
	database := seededDB(t)

	out, err := ImportCatalog(ctx, database, ImportInput{
		Path: writeCatalogFile(t, "more.json", renamedCatalogJSON),
		Mode: ImportModeReplace,
	})
	if err != nil {
		t.Fatalf("ImportCatalog failed: %v", err)
	}
	if out.Imported != 1 || out.Replaced != 1 || out.Skipped != 0 {
		t.Errorf("output = %+v, want 1 imported, 1 replaced", out)
	}

	cat, err := db.LoadCatalog(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if len(cat.Majors) != 4 {
		t.Fatalf("len(Majors) = %d, want 4", len(cat.Majors))
	}
	cs, ok := cat.Find("COMPUTER SCIENCES")
	if !ok {
		t.Fatal("Computer Sciences missing after replace")
	}
	if len(cs.RequirementGroups) != 1 || cs.RequirementGroups[0].GroupID != "9" {
		t.Errorf("groups not replaced: %+v", cs.RequirementGroups)
	}
}

func TestImportCatalog_YAML(t *testing.T) {
	database := openTestDB(t)
	yamlDoc := `
- major: Geography
  degreeType: BS
  requirementGroups:
    - groupId: "1"
      ruleType: choose_n_courses
      requiredCount: 1
      courses: [GEOG 101]
`
	out, err := ImportCatalog(context.Background(), database, ImportInput{
		Path: writeCatalogFile(t, "majors.yaml", yamlDoc),
	})
	if err != nil {
		t.Fatalf("ImportCatalog failed: %v", err)
	}
	if out.Imported != 1 {
		t.Errorf("Imported = %d, want 1", out.Imported)
	}
}

func TestImportCatalog_InvalidInput(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	tests := []struct {
		name  string
		input ImportInput
		code  errors.ErrorCode
	}{
		{"empty path", ImportInput{}, errors.ErrInvalidRequest},
		{"bad mode", ImportInput{Path: "x.json", Mode: "merge"}, errors.ErrInvalidRequest},
		{"wrong extension", ImportInput{Path: writeCatalogFile(t, "majors.csv", "a,b")}, errors.ErrInvalidRequest},
		{"missing file", ImportInput{Path: filepath.Join(t.TempDir(), "none.json")}, errors.ErrFileNotFound},
		{"invalid catalog", ImportInput{Path: writeCatalogFile(t, "bad.json", `[{"requirementGroups": []}]`)}, errors.ErrCatalogInvalid},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ImportCatalog(ctx, database, tc.input)
			if !errors.Is(err, tc.code) {
				t.Errorf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestImportCatalog_RejectsSymlink(t *testing.T) {
	target := writeCatalogFile(t, "real.json", testCatalogJSON)
	link := filepath.Join(t.TempDir(), "link.json")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	_, err := ImportCatalog(context.Background(), openTestDB(t), ImportInput{Path: link})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected INVALID_REQUEST, got %v", err)
	}
}

func TestListMajors(t *testing.T) {
	out, err := ListMajors(context.Background(), seededDB(t))
	if err != nil {
		t.Fatalf("ListMajors failed: %v", err)
	}

	want := []string{"Computer Sciences", "History", "Mathematics"}
	if len(out.Majors) != len(want) {
		t.Fatalf("len(Majors) = %d, want %d", len(out.Majors), len(want))
	}
	for i, name := range want {
		if out.Majors[i].Name != name {
			t.Errorf("Majors[%d].Name = %q, want %q", i, out.Majors[i].Name, name)
		}
	}
	if out.Majors[0].Groups != 3 || out.Majors[0].DegreeType != "BS" {
		t.Errorf("Majors[0] = %+v", out.Majors[0])
	}
}

func TestListMajors_Empty(t *testing.T) {
	out, err := ListMajors(context.Background(), openTestDB(t))
	if err != nil {
		t.Fatalf("ListMajors failed: %v", err)
	}
	if out.Majors == nil || len(out.Majors) != 0 {
		t.Errorf("Majors = %#v, want empty non-nil", out.Majors)
	}
}
