package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Flat workflow snapshots. The graph structure lives in the JSONB
			-- snapshot, the extracted columns exist for filtering and sorting.
			CREATE TABLE workflows (
				id VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL,
				snapshot JSONB NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflows_status ON workflows(status);
			CREATE INDEX idx_workflows_name ON workflows(name);
			CREATE INDEX idx_workflows_created_at ON workflows(created_at);
			CREATE INDEX idx_workflows_updated_at ON workflows(updated_at);
			CREATE INDEX idx_workflows_tags ON workflows USING GIN ((snapshot -> 'tags'));
		`,
		2: `
			-- Reusable workflow templates
			CREATE TABLE workflow_templates (
				id VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				category VARCHAR(255),
				snapshot JSONB NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflow_templates_name ON workflow_templates(name);
			CREATE INDEX idx_workflow_templates_category ON workflow_templates(category);
		`,
	}
}
