package i18n

var entries = map[string]map[string]string{
	"en": {
		"msg.registered":         "Account created successfully",
		"msg.too_many_attempts":  "Too many attempts. Please try again later.",
		"msg.security_failed":    "Security validation failed. Please refresh the page and try again.",
		"msg.register_failed":    "Registration failed. Please try again.",
		"msg.fields_required":    "All fields are required!",
		"msg.invalid_username":   "Username must be 3 to 32 alphanumeric characters!",
		"msg.invalid_email":      "Please provide a valid email address!",
		"msg.password_too_short": "Password must be at least 8 characters long",
		"msg.password_too_long":  "Password must be less than 72 characters",
		"msg.password_no_upper":  "Password must contain at least one uppercase letter",
		"msg.password_no_lower":  "Password must contain at least one lowercase letter",
		"msg.password_no_digit":  "Password must contain at least one number",
		"msg.password_mismatch":  "Passwords do not match!",
		"msg.captcha_failed":     "Captcha verification failed. Please try again.",
		"msg.account_in_use":     "Username or email is already in use!",
		"msg.try_again_later":    "Registration failed. Please try again later.",

		"page.title":            "World of Warcraft - Account Registration",
		"page.description":      "Join our World of Warcraft private server. Create your account and start your adventure!",
		"page.heading":          "Create Your Account",
		"form.username":         "Username",
		"form.username_hint":    "Username must be 3-32 alphanumeric characters",
		"form.email":            "Email",
		"form.password":         "Password",
		"form.password_hint":    "Password must contain: uppercase, lowercase, and number (min 8 characters)",
		"form.confirm_password": "Confirm Password",
		"form.submit":           "Join the Battle",
		"result.realmlist":      "Realmlist: %s",
		"footer.trademark":      "World of Warcraft and all related trademarks are © Blizzard Entertainment.",
		"footer.fan_made":       "This is a fan-made private server.",
	},
	"es": {
		"msg.registered":         "Cuenta creada con éxito",
		"msg.too_many_attempts":  "Demasiados intentos. Por favor, inténtalo de nuevo más tarde.",
		"msg.security_failed":    "Falló la validación de seguridad. Por favor, actualiza la página e inténtalo de nuevo.",
		"msg.register_failed":    "Falló el registro. Por favor, inténtalo de nuevo.",
		"msg.fields_required":    "¡Todos los campos son obligatorios!",
		"msg.invalid_username":   "¡El usuario debe tener entre 3 y 32 caracteres alfanuméricos!",
		"msg.invalid_email":      "¡Por favor, proporciona una dirección de correo electrónico válida!",
		"msg.password_too_short": "La contraseña debe tener al menos 8 caracteres",
		"msg.password_too_long":  "La contraseña debe tener menos de 72 caracteres",
		"msg.password_no_upper":  "La contraseña debe contener al menos una letra mayúscula",
		"msg.password_no_lower":  "La contraseña debe contener al menos una letra minúscula",
		"msg.password_no_digit":  "La contraseña debe contener al menos un número",
		"msg.password_mismatch":  "¡Las contraseñas no coinciden!",
		"msg.captcha_failed":     "Falló la verificación del captcha. Por favor, inténtalo de nuevo.",
		"msg.account_in_use":     "¡El usuario o correo electrónico ya está en uso!",
		"msg.try_again_later":    "Falló el registro. Por favor, inténtalo de nuevo más tarde.",

		"page.title":            "World of Warcraft - Registro de cuenta",
		"page.description":      "Únete a nuestro servidor privado de World of Warcraft. ¡Crea tu cuenta y comienza tu aventura!",
		"page.heading":          "Crea tu cuenta",
		"form.username":         "Usuario",
		"form.username_hint":    "El usuario debe tener entre 3 y 32 caracteres alfanuméricos",
		"form.email":            "Correo electrónico",
		"form.password":         "Contraseña",
		"form.password_hint":    "La contraseña debe contener: mayúscula, minúscula y número (mínimo 8 caracteres)",
		"form.confirm_password": "Confirmar contraseña",
		"form.submit":           "Únete a la batalla",
		"result.realmlist":      "Lista de Reinos: %s",
		"footer.trademark":      "World of Warcraft y todas las marcas relacionadas son © Blizzard Entertainment.",
		"footer.fan_made":       "Este es un servidor privado hecho por fans.",
	},
}
