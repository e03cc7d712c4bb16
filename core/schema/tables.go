package schema

// Table names.
const (
	TableUsers                       = "users"
	TableProfiles                    = "profiles"
	TableStudents                    = "students"
	TableTeachers                    = "teachers"
	TableSubjects                    = "subjects"
	TableClasses                     = "classes"
	TableClassSchedules              = "class_schedules"
	TableAttendance                  = "attendance"
	TableExams                       = "exams"
	TableExamTerms                   = "exam_terms"
	TableExamSubjectMarks            = "exam_subject_marks"
	TableCoScholasticGrades          = "co_scholastic_grades"
	TableFees                        = "fees"
	TableMonthlyFeeStructure         = "monthly_fee_structure"
	TableStudentFeeRecords           = "student_fee_records"
	TableBusRoutes                   = "bus_routes"
	TableLibraryBooks                = "library_books"
	TableNotifications               = "notifications"
	TableParentGuardians             = "parent_guardians"
	TableScholarRegisterEntries      = "scholar_register_entries"
	TableStudentSubjects             = "student_subjects"
	TableStudentTransferCertificates = "student_transfer_certificates"
	TableSalaries                    = "salaries"
)

func col(field, label string, width int) ColumnDescriptor {
	return ColumnDescriptor{Field: field, Label: label, Width: width, Sortable: true, Format: PlainText}
}

func (c ColumnDescriptor) as(f Formatter) ColumnDescriptor {
	c.Format = f
	return c
}

func createdAt() ColumnDescriptor {
	return col("created_at", "Created At", 180).as(ShortDateTime)
}

// Default is the registry of the school database.
var Default = NewRegistry(
	TableDescriptor{
		Name:         TableUsers,
		PrimaryKey:   []string{"id"},
		DefaultOrder: "id",
		Hidden:       []string{"password_hash"},
		Columns: []ColumnDescriptor{
			col("id", "ID", 80),
			col("username", "Username", 180),
			col("full_name", "Full Name", 200),
			col("email", "Email", 240),
			col("role", "Role", 130).as(RoleBadge),
			createdAt(),
		},
	},
	TableDescriptor{
		Name:         TableProfiles,
		PrimaryKey:   []string{"id"},
		DefaultOrder: "created_at",
		Columns: []ColumnDescriptor{
			col("id", "User UUID", 260),
			col("username", "Username", 180),
			col("full_name", "Full Name", 220),
			col("role", "Role", 130).as(RoleBadge),
			createdAt(),
		},
	},
	TableDescriptor{
		Name:         TableStudents,
		PrimaryKey:   []string{"student_id"},
		DefaultOrder: "created_at",
		Columns: []ColumnDescriptor{
			col("student_id", "Student ID", 160),
			col("roll_number", "Roll No.", 110),
			col("name", "Name", 200),
			col("class_name", "Class", 130).as(Badge(ToneInfo)),
			col("email", "Email", 240),
			col("phone_number", "Phone", 160),
			col("village", "Village", 160),
			col("division", "Division", 120),
			col("bus_enabled", "Bus", 100).as(Boolean("Enabled", "No")),
			col("is_verified", "Verified", 120).as(Boolean("Verified", "Pending")),
			col("dob", "DOB", 130).as(ShortDate),
			col("admission_date", "Admission", 140).as(ShortDate),
		},
	},
	TableDescriptor{
		Name:         TableTeachers,
		PrimaryKey:   []string{"teacher_code"},
		DefaultOrder: "created_at",
		Columns: []ColumnDescriptor{
			col("teacher_code", "Teacher Code", 130),
			col("name", "Name", 200),
			col("email", "Email", 240),
			col("subject_code", "Subject Code", 140).as(Monospace),
			col("dob", "DOB", 130).as(ShortDate),
			col("qualification", "Qualification", 200),
			col("experience_years", "Experience", 120).as(Years),
			col("status", "Status", 120).as(ActiveStatus),
			col("salary", "Salary", 130).as(Rupees),
			createdAt(),
		},
	},
	TableDescriptor{
		Name:         TableSubjects,
		PrimaryKey:   []string{"code"},
		DefaultOrder: "code",
		Columns: []ColumnDescriptor{
			col("code", "Code", 130).as(Monospace),
			col("name", "Subject Name", 260),
			col("credits", "Credits", 100),
			col("active", "Active", 110).as(Boolean()),
			col("description", "Description", 320),
		},
	},
	TableDescriptor{
		Name:         TableClasses,
		PrimaryKey:   []string{"name"},
		DefaultOrder: "name",
		Columns: []ColumnDescriptor{
			col("name", "Class Name", 180),
			col("class_level", "Level", 120),
			col("class_teacher_code", "Class Teacher Code", 160),
			createdAt(),
		},
	},
	TableDescriptor{
		Name:         TableClassSchedules,
		PrimaryKey:   []string{"class_name", "subject_code", "day_of_week", "start_time"},
		DefaultOrder: "created_at",
		Columns: []ColumnDescriptor{
			col("class_name", "Class", 140),
			col("subject_code", "Subject Code", 140),
			col("teacher_code", "Teacher Code", 140),
			col("day_of_week", "Day", 130),
			col("start_time", "Start Time", 130),
			col("end_time", "End Time", 130),
			createdAt(),
		},
	},
	TableDescriptor{
		Name:         TableAttendance,
		PrimaryKey:   []string{"student_id", "attendance_date"},
		DefaultOrder: "attendance_date",
		Columns: []ColumnDescriptor{
			col("student_id", "Student ID", 160),
			col("attendance_date", "Date", 140).as(ShortDate),
			col("status", "Status", 150).as(AttendanceStatus),
			col("remarks", "Remarks", 220),
			createdAt(),
		},
	},
	TableDescriptor{
		Name:         TableExams,
		PrimaryKey:   []string{"exam_id"},
		DefaultOrder: "exam_id",
		Columns: []ColumnDescriptor{
			col("exam_id", "Exam ID", 100),
			col("name", "Exam Name", 260),
			col("start_date", "Start Date", 140).as(ShortDate),
			col("end_date", "End Date", 140).as(ShortDate),
			col("description", "Description", 260),
			createdAt(),
		},
	},
	TableDescriptor{
		Name:         TableExamTerms,
		PrimaryKey:   []string{"term_name", "session_year"},
		DefaultOrder: "term_name",
		Columns: []ColumnDescriptor{
			col("term_name", "Term", 180),
			col("session_year", "Session Year", 140),
		},
	},
	TableDescriptor{
		Name:         TableExamSubjectMarks,
		PrimaryKey:   []string{"student_id", "term_name", "session_year", "subject_code"},
		DefaultOrder: "created_at",
		Columns: []ColumnDescriptor{
			col("student_id", "Student ID", 160),
			col("term_name", "Term", 140),
			col("session_year", "Session", 120),
			col("subject_code", "Subject Code", 140),
			col("max_marks", "Max", 100),
			col("obtained_marks", "Marks", 100),
			col("grade", "Grade", 100).as(GradeBadge),
			col("result", "Result", 120),
			createdAt(),
		},
	},
	TableDescriptor{
		Name:         TableCoScholasticGrades,
		PrimaryKey:   []string{"student_id", "term_name", "session_year"},
		DefaultOrder: "created_at",
		Columns: []ColumnDescriptor{
			col("student_id", "Student ID", 160),
			col("term_name", "Term", 140),
			col("session_year", "Session", 120),
			col("work_education", "Work Edu.", 140),
			col("arts_education", "Arts Edu.", 140),
			col("physical_education", "Physical Edu.", 160),
			col("behaviour_values", "Behaviour", 180),
			col("regularity", "Regularity", 140),
			col("attitude_teachers", "Attitude (Teachers)", 200),
			createdAt(),
		},
	},
	TableDescriptor{
		Name:         TableFees,
		PrimaryKey:   []string{"fee_id"},
		DefaultOrder: "fee_id",
		Columns: []ColumnDescriptor{
			col("fee_id", "Fee ID", 100),
			col("student_id", "Student ID", 160),
			col("fee_type", "Fee Type", 160),
			col("amount", "Amount", 140).as(Rupees),
			col("due_date", "Due Date", 140).as(ShortDate),
			col("payment_date", "Payment Date", 150).as(ShortDate),
			col("status", "Status", 120).as(FeeStatus),
			col("remarks", "Remarks", 220),
		},
	},
	TableDescriptor{
		Name:         TableMonthlyFeeStructure,
		PrimaryKey:   []string{"fee_code"},
		DefaultOrder: "fee_code",
		Columns: []ColumnDescriptor{
			col("fee_code", "Fee Code", 100),
			col("month_name", "Month", 140),
			col("fee_description", "Description", 260),
			col("base_fee", "Base Fee", 140).as(Rupees),
			col("bus_fee", "Bus Fee", 140).as(Rupees),
		},
	},
	TableDescriptor{
		Name:         TableStudentFeeRecords,
		PrimaryKey:   []string{"record_id"},
		DefaultOrder: "record_id",
		Columns: []ColumnDescriptor{
			col("record_id", "Record ID", 110),
			col("student_id", "Student ID", 160),
			col("fee_code", "Fee Code", 120),
			col("paid_amount", "Paid", 120).as(Rupees),
			col("discount", "Discount", 120).as(Rupees),
			col("fine", "Fine", 100).as(Rupees),
			col("due_amount", "Due", 120).as(Rupees),
			col("payment_date", "Payment Date", 150).as(ShortDate),
			col("receipt_number", "Receipt No.", 140),
		},
	},
	TableDescriptor{
		Name:         TableBusRoutes,
		PrimaryKey:   []string{"route_name"},
		DefaultOrder: "route_name",
		Columns: []ColumnDescriptor{
			col("route_name", "Route Name", 220),
			col("village", "Village", 220),
			col("bus_charge", "Bus Charge", 140).as(Rupees),
			createdAt(),
		},
	},
	TableDescriptor{
		Name:         TableLibraryBooks,
		PrimaryKey:   []string{"isbn"},
		DefaultOrder: "added_date",
		Columns: []ColumnDescriptor{
			col("isbn", "ISBN", 180),
			col("title", "Title", 260),
			col("author", "Author", 200),
			col("published_year", "Year", 100),
			col("category", "Category", 160),
			col("copies_available", "Available", 120),
			col("total_copies", "Total", 100),
			col("added_date", "Added Date", 140).as(ShortDate),
		},
	},
	TableDescriptor{
		Name:         TableNotifications,
		PrimaryKey:   []string{"notification_id"},
		DefaultOrder: "created_at",
		Columns: []ColumnDescriptor{
			col("notification_id", "ID", 80),
			col("title", "Title", 260),
			col("message", "Message", 360),
			col("recipient_type", "Recipient Type", 160),
			col("recipient_id", "Recipient ID", 160),
			col("is_read", "Read", 100).as(Boolean()),
			createdAt(),
		},
	},
	TableDescriptor{
		Name:         TableParentGuardians,
		PrimaryKey:   []string{"student_id", "relationship", "name"},
		DefaultOrder: "created_at",
		Columns: []ColumnDescriptor{
			col("student_id", "Student ID", 160),
			col("name", "Name", 220),
			col("relationship", "Relationship", 160),
			col("phone_number", "Phone", 160),
			col("email", "Email", 220),
			col("address", "Address", 260),
		},
	},
	TableDescriptor{
		Name:         TableScholarRegisterEntries,
		PrimaryKey:   []string{"student_id", "academic_year"},
		DefaultOrder: "created_at",
		Columns: []ColumnDescriptor{
			col("student_id", "Student ID", 160),
			col("academic_year", "Academic Year", 140),
			col("class_name", "Class", 120),
			col("date_admission", "Admission Date", 150).as(ShortDate),
			col("date_promotion", "Promotion Date", 150).as(ShortDate),
			col("date_removal", "Removal Date", 150).as(ShortDate),
			col("cause_removal", "Cause of Removal", 240),
			col("conduct", "Conduct", 160),
			col("work", "Work", 160),
			col("signature", "Signature", 160),
		},
	},
	TableDescriptor{
		Name:         TableStudentSubjects,
		PrimaryKey:   []string{"student_id", "subject_code"},
		DefaultOrder: "enrolled_date",
		Columns: []ColumnDescriptor{
			col("student_id", "Student ID", 160),
			col("subject_code", "Subject Code", 160),
			col("enrolled_date", "Enrolled Date", 150).as(ShortDate),
			col("status", "Status", 130).as(EnrolmentStatus),
			col("remarks", "Remarks", 220),
		},
	},
	TableDescriptor{
		Name:         TableStudentTransferCertificates,
		PrimaryKey:   []string{"student_id", "tc_number"},
		DefaultOrder: "created_at",
		Columns: []ColumnDescriptor{
			col("student_id", "Student ID", 160),
			col("tc_number", "TC Number", 160),
			col("admission_file_no", "Admission File No", 180),
			col("withdrawal_file_no", "Withdrawal File No", 180),
			col("register_number", "Register No", 160),
			col("dob", "DOB", 130).as(ShortDate),
			col("dob_in_words", "DOB (Words)", 260),
			col("prepared_by", "Prepared By", 180),
			col("prepared_date", "Prepared Date", 150).as(ShortDate),
			col("head_of_institution", "Head of Institution", 220),
		},
	},
	TableDescriptor{
		Name:         TableSalaries,
		PrimaryKey:   []string{"teacher_code", "month"},
		DefaultOrder: "month",
		Columns: []ColumnDescriptor{
			col("teacher_code", "Teacher Code", 160),
			col("month", "Month", 140),
			col("amount", "Amount", 160).as(Rupees),
		},
	},
)
