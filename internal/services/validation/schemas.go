package validation

// Request schema names.
const (
	SchemaRegister             = "register"
	SchemaLogin                = "login"
	SchemaPasswordResetRequest = "password-reset-request"
	SchemaPasswordResetConfirm = "password-reset-confirm"
	SchemaProfileUpdate        = "profile-update"
	SchemaPostCreate           = "post-create"
	SchemaPostUpdate           = "post-update"
	SchemaComment              = "comment"
	SchemaFeedCreate           = "feed-create"
	SchemaFeedUpdate           = "feed-update"
	SchemaProgressCreate       = "progress-create"
	SchemaProgressUpdate       = "progress-update"
	SchemaRoleUpdate           = "role-update"
	SchemaAdminUserCreate      = "admin-user-create"
)

const emailPattern = `^[^@\\s]+@[^@\\s]+\\.[^@\\s]+$`

var requestSchemas = map[string]string{
	SchemaRegister: `{
		"type": "object",
		"additionalProperties": false,
		"required": ["username", "email", "password"],
		"properties": {
			"username": {"type": "string", "pattern": "^[A-Za-z0-9_.-]{3,32}$"},
			"name": {"type": "string", "maxLength": 100},
			"email": {"type": "string", "maxLength": 254, "pattern": "` + emailPattern + `"},
			"password": {"type": "string", "minLength": 8, "maxLength": 72}
		}
	}`,
	SchemaLogin: `{
		"type": "object",
		"required": ["email", "password"],
		"properties": {
			"email": {"type": "string", "minLength": 1},
			"password": {"type": "string", "minLength": 1}
		}
	}`,
	SchemaPasswordResetRequest: `{
		"type": "object",
		"required": ["email"],
		"properties": {
			"email": {"type": "string", "minLength": 1}
		}
	}`,
	SchemaPasswordResetConfirm: `{
		"type": "object",
		"additionalProperties": false,
		"required": ["token", "password"],
		"properties": {
			"token": {"type": "string", "minLength": 1},
			"password": {"type": "string", "minLength": 8, "maxLength": 72}
		}
	}`,
	SchemaProfileUpdate: `{
		"type": "object",
		"additionalProperties": false,
		"properties": {
			"name": {"type": "string", "maxLength": 100},
			"bio": {"type": "string", "maxLength": 500},
			"profile_picture_url": {"type": "string", "maxLength": 2048}
		}
	}`,
	SchemaPostCreate: `{
		"type": "object",
		"additionalProperties": false,
		"required": ["description"],
		"properties": {
			"description": {"type": "string", "maxLength": 5000},
			"image_urls": {"type": "array", "maxItems": 10, "items": {"type": "string", "minLength": 1}},
			"video_url": {"type": "string", "maxLength": 2048}
		}
	}`,
	SchemaPostUpdate: `{
		"type": "object",
		"additionalProperties": false,
		"properties": {
			"description": {"type": "string", "maxLength": 5000},
			"image_urls": {"type": "array", "maxItems": 10, "items": {"type": "string", "minLength": 1}},
			"video_url": {"type": "string", "maxLength": 2048}
		}
	}`,
	SchemaComment: `{
		"type": "object",
		"additionalProperties": false,
		"required": ["content"],
		"properties": {
			"content": {"type": "string", "minLength": 1, "maxLength": 2000}
		}
	}`,
	SchemaFeedCreate: `{
		"type": "object",
		"additionalProperties": false,
		"required": ["name"],
		"properties": {
			"name": {"type": "string", "minLength": 1, "maxLength": 100},
			"description": {"type": "string", "maxLength": 1000}
		}
	}`,
	SchemaFeedUpdate: `{
		"type": "object",
		"additionalProperties": false,
		"properties": {
			"name": {"type": "string", "minLength": 1, "maxLength": 100},
			"description": {"type": "string", "maxLength": 1000}
		}
	}`,
	SchemaProgressCreate: `{
		"type": "object",
		"additionalProperties": false,
		"required": ["title", "status"],
		"properties": {
			"title": {"type": "string", "minLength": 1, "maxLength": 200},
			"description": {"type": "string", "maxLength": 5000},
			"status": {"enum": ["planned", "in_progress", "completed"]},
			"date": {"type": "string", "pattern": "^([0-9]{4}-[0-9]{2}-[0-9]{2})?$"},
			"duration_minutes": {"type": "integer", "minimum": 0}
		}
	}`,
	SchemaProgressUpdate: `{
		"type": "object",
		"additionalProperties": false,
		"properties": {
			"title": {"type": "string", "minLength": 1, "maxLength": 200},
			"description": {"type": "string", "maxLength": 5000},
			"status": {"enum": ["planned", "in_progress", "completed"]},
			"date": {"type": "string", "pattern": "^([0-9]{4}-[0-9]{2}-[0-9]{2})?$"},
			"duration_minutes": {"type": "integer", "minimum": 0}
		}
	}`,
	SchemaRoleUpdate: `{
		"type": "object",
		"additionalProperties": false,
		"required": ["role"],
		"properties": {
			"role": {"type": "string", "pattern": "^[a-z][a-z0-9_-]{0,31}$"}
		}
	}`,
	SchemaAdminUserCreate: `{
		"type": "object",
		"additionalProperties": false,
		"required": ["username", "email", "password"],
		"properties": {
			"username": {"type": "string", "pattern": "^[A-Za-z0-9_.-]{3,32}$"},
			"name": {"type": "string", "maxLength": 100},
			"email": {"type": "string", "maxLength": 254, "pattern": "` + emailPattern + `"},
			"password": {"type": "string", "minLength": 8, "maxLength": 72},
			"role": {"type": "string", "pattern": "^[a-z][a-z0-9_-]{0,31}$"}
		}
	}`,
}
