package model

// Stats - счётчики для панели администратора
type Stats struct {
	Teachers int64 `json:"teachers"`
	Subjects int64 `json:"subjects"`
	Lessons  int64 `json:"lessons"`
	Cards    int64 `json:"cards"`
}
