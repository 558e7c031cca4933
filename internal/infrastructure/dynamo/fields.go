package dynamo

// DynamoDB attribute names used in keys and expressions across repos.
const (
	fieldScope     = "scope"
	fieldMemberID  = "member_id"
	fieldUpdatedAt = "updated_at"
	fieldExpiresAt = "expires_at"
)
