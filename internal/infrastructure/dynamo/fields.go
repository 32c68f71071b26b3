package dynamo

// DynamoDB attribute names used in key and update expressions across repos.
const (
	fieldEmail        = "email"
	fieldUserID       = "user_id"
	fieldPasswordHash = "password_hash"
	fieldOTPVerified  = "otp_verified"
	fieldOTP          = "otp"
	fieldOTPExpiresAt = "otp_expires_at"
	fieldUpdatedAt    = "updated_at"

	fieldProductID          = "product_id"
	fieldName               = "name"
	fieldDescription        = "description"
	fieldImages             = "images"
	fieldSizes              = "sizes"
	fieldColors             = "colors"
	fieldPrice              = "price"
	fieldProductInfo        = "product_info"
	fieldShippingAndReturns = "shipping_and_returns"

	indexUserID = "user_id-index"
)
