package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Create drafts table
			CREATE TABLE drafts (
				id VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				document JSONB NOT NULL,
				diagnostics JSONB NOT NULL DEFAULT '[]',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_drafts_name ON drafts(name);
			CREATE INDEX idx_drafts_created_at ON drafts(created_at);
			CREATE INDEX idx_drafts_deleted_at ON drafts(deleted_at);
		`,
		2: `
			-- Migration 2: track the author and blocking state for listing
			ALTER TABLE drafts
				ADD COLUMN created_by VARCHAR(255) NOT NULL DEFAULT '',
				ADD COLUMN blocking BOOLEAN NOT NULL DEFAULT false;

			CREATE INDEX idx_drafts_created_by ON drafts(created_by);
		`,
	}
}
