package yoyo_api

// Static mappings from external course identifiers to human labels and to
// the ordered per-course level IDs used for level grouping. Extend these by
// adding entries; they are never mutated at runtime.

// levelIDsByCourse maps a course ID to its level IDs in Level 1..N order.
var levelIDsByCourse = map[string][]string{
	// Beginner Conversational
	"5f9c5382c32d410f1447bee9": {
		"5f9c5382c32d410f1447bef5",
		"5f9c5382c32d410f1447bef6",
		"5f9c5382c32d410f1447bef7",
		"5f9c5382c32d410f1447bef8",
		"5f9c5382c32d410f1447bef9",
		"5f9c5382c32d410f1447befa",
	},
	// Chinese Characters
	"5f9c5382c32d410f1447beeb": {
		"5f9c5382c32d410f1447bf01",
		"5f9c5382c32d410f1447bf02",
		"5f9c5382c32d410f1447bf03",
		"5f9c5382c32d410f1447bf04",
		"5f9c5382c32d410f1447bf05",
		"5f9c5382c32d410f1447bf06",
	},
	// Intermediate Conversational
	"5f9c5382c32d410f1447beea": {
		"5f9c5382c32d410f1447befb",
		"5f9c5382c32d410f1447befc",
		"5f9c5382c32d410f1447befd",
		"5f9c5382c32d410f1447befe",
		"5f9c5382c32d410f1447beff",
		"5f9c5382c32d410f1447bf00",
	},
	// Chinese Characters II
	"5f9c5382c32d410f1447beed": {
		"5f9c5382c32d410f1447bf0d",
		"5f9c5382c32d410f1447bf0e",
		"5f9c5382c32d410f1447bf0f",
		"5f9c5382c32d410f1447bf10",
		"5f9c5382c32d410f1447bf11",
		"5f9c5382c32d410f1447bf12",
	},
	// Upper Intermediate Conversational
	"5f9c5382c32d410f1447beec": {
		"5f9c5382c32d410f1447bf07",
		"5f9c5382c32d410f1447bf08",
		"5f9c5382c32d410f1447bf09",
		"5f9c5382c32d410f1447bf0a",
		"5f9c5382c32d410f1447bf0b",
		"5f9c5382c32d410f1447bf0c",
	},
	// Chinese Character Reader
	"5f9c5382c32d410f1447beee": {
		"5f9c5382c32d410f1447bf13",
		"5f9c5382c32d410f1447bf14",
		"5f9c5382c32d410f1447bf15",
		"5f9c5382c32d410f1447bf16",
		"5f9c5382c32d410f1447bf17",
		"5f9c5382c32d410f1447bf18",
	},
}

// courseNames maps a course ID to its display name.
var courseNames = map[string]string{
	"5f9c5382c32d410f1447bee9": "Beginner Conversational",
	"5f9c5382c32d410f1447beeb": "Chinese Characters",
	"5f9c5382c32d410f1447beea": "Intermediate Conversational",
	"5f9c5382c32d410f1447beed": "Chinese Characters II",
	"5f9c5382c32d410f1447beec": "Upper Intermediate Conversational",
	"5f9c5382c32d410f1447beee": "Chinese Character Reader",
}

// courseOrder fixes the presentation order of configured courses.
var courseOrder = []string{
	"5f9c5382c32d410f1447bee9",
	"5f9c5382c32d410f1447beeb",
	"5f9c5382c32d410f1447beea",
	"5f9c5382c32d410f1447beed",
	"5f9c5382c32d410f1447beec",
	"5f9c5382c32d410f1447beee",
}

// Course pairs a course ID with its display name.
type Course struct {
	ID   string
	Name string
}

// Courses returns the configured courses in a stable presentation order.
// Only courses with a level mapping are listed.
func Courses() []Course {
	courses := make([]Course, 0, len(courseOrder))
	for _, id := range courseOrder {
		if _, ok := levelIDsByCourse[id]; !ok {
			continue
		}
		courses = append(courses, Course{ID: id, Name: CourseName(id)})
	}
	return courses
}

// CourseName returns the display name for a course ID, falling back to the
// ID itself for unknown courses.
func CourseName(courseID string) string {
	if name, ok := courseNames[courseID]; ok {
		return name
	}
	return courseID
}

// CourseLevels returns the ordered level IDs for a course, or false when no
// mapping is configured for it.
func CourseLevels(courseID string) ([]string, bool) {
	levels, ok := levelIDsByCourse[courseID]
	if !ok {
		return nil, false
	}
	// Copy so callers cannot mutate the table.
	out := make([]string, len(levels))
	copy(out, levels)
	return out, true
}
