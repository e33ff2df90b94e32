package domain

type Stats struct {
	Total          int `json:"total_tickets"`
	Scanned        int `json:"scanned_tickets"`
	Remaining      int `json:"remaining_tickets"`
	VIP            int `json:"vip_count"`
	Gold           int `json:"gold_count"`
	Standard       int `json:"standard_count"`
	AttendanceRate int `json:"attendance_rate"`
}
