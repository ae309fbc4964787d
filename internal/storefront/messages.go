package storefront

const (
	MsgSignInRequired = "Debes iniciar sesión para usar el carrito."
	MsgIncompleteSize = "Por favor, completa todos los campos para obtener tu recomendación."
	MsgGenericError   = "Ocurrió un error. Intenta nuevamente."
	MsgEmptyCart      = "Tu carrito está vacío."
	MsgCheckoutDone   = "¡Gracias por tu compra!"
	MsgInvalidFilter  = "El precio máximo no es válido."
	MsgInvalidProduct = "Revisa los datos del producto: el nombre es obligatorio y el precio no puede ser negativo."
	MsgProductCreated = "Producto creado."
)
