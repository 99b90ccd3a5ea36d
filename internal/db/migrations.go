package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'user_role') THEN
			CREATE TYPE user_role AS ENUM ('ADMIN', 'POLITICIAN', 'STAFF', 'VIEWER');
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'visitor_category') THEN
			CREATE TYPE visitor_category AS ENUM ('GENERAL', 'VIP', 'STUDENT', 'FARMER', 'BUSINESS', 'SENIOR_CITIZEN');
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'appointment_status') THEN
			CREATE TYPE appointment_status AS ENUM ('PENDING', 'CONFIRMED', 'COMPLETED', 'CANCELLED', 'NO_SHOW');
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'appointment_priority') THEN
			CREATE TYPE appointment_priority AS ENUM ('URGENT', 'HIGH', 'NORMAL', 'LOW');
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'visit_status') THEN
			CREATE TYPE visit_status AS ENUM ('IN_PROGRESS', 'COMPLETED', 'CANCELLED', 'NO_SHOW');
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'issue_status') THEN
			CREATE TYPE issue_status AS ENUM ('OPEN', 'IN_PROGRESS', 'RESOLVED', 'CLOSED', 'ESCALATED');
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'issue_category') THEN
			CREATE TYPE issue_category AS ENUM ('INFRASTRUCTURE', 'WATER', 'ELECTRICITY', 'HEALTH', 'EDUCATION', 'EMPLOYMENT', 'OTHER');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		phone VARCHAR(32),
		role user_role NOT NULL DEFAULT 'STAFF',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS visitors (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		phone VARCHAR(32) NOT NULL,
		email VARCHAR(255),
		aadhaar_number VARCHAR(16),
		voter_id VARCHAR(32),
		village VARCHAR(128),
		district VARCHAR(128),
		state VARCHAR(128),
		category visitor_category NOT NULL DEFAULT 'GENERAL',
		age INTEGER,
		gender VARCHAR(16),
		occupation VARCHAR(128),
		education VARCHAR(128),
		skills TEXT,
		visit_count INTEGER NOT NULL DEFAULT 0,
		last_visit TIMESTAMPTZ,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_visitors_phone ON visitors (phone);`,
	`CREATE INDEX IF NOT EXISTS idx_visitors_aadhaar_number ON visitors (aadhaar_number);`,
	`CREATE INDEX IF NOT EXISTS idx_visitors_voter_id ON visitors (voter_id);`,
	`CREATE INDEX IF NOT EXISTS idx_visitors_village ON visitors (village);`,
	`CREATE INDEX IF NOT EXISTS idx_visitors_district ON visitors (district);`,
	`CREATE INDEX IF NOT EXISTS idx_visitors_is_active ON visitors (is_active);`,
	`CREATE TABLE IF NOT EXISTS appointments (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		title VARCHAR(255) NOT NULL,
		visitor_id UUID NOT NULL REFERENCES visitors(id),
		user_id UUID NOT NULL REFERENCES users(id),
		scheduled_date TIMESTAMPTZ NOT NULL,
		start_time TIMESTAMPTZ NOT NULL,
		end_time TIMESTAMPTZ NOT NULL,
		duration_minutes INTEGER NOT NULL,
		status appointment_status NOT NULL DEFAULT 'PENDING',
		priority appointment_priority NOT NULL DEFAULT 'NORMAL',
		location VARCHAR(255),
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (duration_minutes BETWEEN 15 AND 240),
		CHECK (end_time > start_time)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_visitor_id ON appointments (visitor_id);`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_user_id ON appointments (user_id);`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_scheduled_date ON appointments (scheduled_date);`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_user_date ON appointments (user_id, scheduled_date);`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_status ON appointments (status);`,
	`CREATE TABLE IF NOT EXISTS visits (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		visitor_id UUID NOT NULL REFERENCES visitors(id),
		user_id UUID NOT NULL REFERENCES users(id),
		appointment_id UUID REFERENCES appointments(id),
		check_in_time TIMESTAMPTZ NOT NULL,
		check_out_time TIMESTAMPTZ,
		status visit_status NOT NULL DEFAULT 'IN_PROGRESS',
		purpose VARCHAR(255),
		notes TEXT,
		satisfaction INTEGER,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (satisfaction IS NULL OR satisfaction BETWEEN 1 AND 5)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_visits_visitor_id ON visits (visitor_id);`,
	`CREATE INDEX IF NOT EXISTS idx_visits_user_id ON visits (user_id);`,
	`CREATE INDEX IF NOT EXISTS idx_visits_appointment_id ON visits (appointment_id);`,
	`CREATE INDEX IF NOT EXISTS idx_visits_check_in_time ON visits (check_in_time);`,
	`CREATE INDEX IF NOT EXISTS idx_visits_status ON visits (status);`,
	// Exactly one winner under concurrent check-ins: the second insert for the
	// same visitor with an open visit fails with a duplicate-key error.
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_visits_active_per_visitor
		ON visits (visitor_id) WHERE status = 'IN_PROGRESS';`,
	`CREATE TABLE IF NOT EXISTS issues (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		category issue_category NOT NULL DEFAULT 'OTHER',
		priority appointment_priority NOT NULL DEFAULT 'NORMAL',
		status issue_status NOT NULL DEFAULT 'OPEN',
		visitor_id UUID REFERENCES visitors(id),
		assigned_user_id UUID REFERENCES users(id),
		created_by_id UUID NOT NULL,
		due_date TIMESTAMPTZ,
		resolved_date TIMESTAMPTZ,
		estimated_cost DOUBLE PRECISION,
		actual_cost DOUBLE PRECISION,
		tags TEXT,
		photos TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_issues_status ON issues (status);`,
	`CREATE INDEX IF NOT EXISTS idx_issues_visitor_id ON issues (visitor_id);`,
	`CREATE INDEX IF NOT EXISTS idx_issues_assigned_user_id ON issues (assigned_user_id);`,
	`CREATE TABLE IF NOT EXISTS issue_comments (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		issue_id UUID NOT NULL REFERENCES issues(id) ON DELETE CASCADE,
		created_by_user_id UUID NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_issue_comments_issue_id ON issue_comments (issue_id);`,
	`CREATE TABLE IF NOT EXISTS resumes (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		visitor_id UUID NOT NULL REFERENCES visitors(id),
		file_name VARCHAR(255) NOT NULL,
		file_url TEXT,
		title VARCHAR(255),
		notes TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_resumes_visitor_id ON resumes (visitor_id);`,
	`CREATE INDEX IF NOT EXISTS idx_resumes_visitor_active ON resumes (visitor_id, is_active);`,
	`CREATE OR REPLACE FUNCTION set_updated_at()
	RETURNS TRIGGER AS $$
	BEGIN
		NEW.updated_at = NOW();
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_visitors_updated_at') THEN
			CREATE TRIGGER trg_visitors_updated_at
				BEFORE UPDATE ON visitors
				FOR EACH ROW
				EXECUTE PROCEDURE set_updated_at();
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_appointments_updated_at') THEN
			CREATE TRIGGER trg_appointments_updated_at
				BEFORE UPDATE ON appointments
				FOR EACH ROW
				EXECUTE PROCEDURE set_updated_at();
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_visits_updated_at') THEN
			CREATE TRIGGER trg_visits_updated_at
				BEFORE UPDATE ON visits
				FOR EACH ROW
				EXECUTE PROCEDURE set_updated_at();
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_issues_updated_at') THEN
			CREATE TRIGGER trg_issues_updated_at
				BEFORE UPDATE ON issues
				FOR EACH ROW
				EXECUTE PROCEDURE set_updated_at();
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_resumes_updated_at') THEN
			CREATE TRIGGER trg_resumes_updated_at
				BEFORE UPDATE ON resumes
				FOR EACH ROW
				EXECUTE PROCEDURE set_updated_at();
		END IF;
	END
	$$;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
