package game

import "fmt"

// User-facing copy. Markdown, Spanish, carried over from the original
// Trivial UNED bot.

const (
	textNotRegistered = "❌ *No estás registrado en el sistema*\n\n" +
		"Para jugar, primero debes registrarte.\n\n" +
		"📝 Usa el comando:\n" +
		"`/registro 'Nombre Apellidos' email@ejemplo.com`\n\n" +
		"Ejemplo:\n" +
		"`/registro 'Pablo Pérez García' pperez@alumno.uned.es`"

	textPendingApproval = "⏳ *Registro Pendiente*\n\n" +
		"Tu solicitud de registro está pendiente de validación por tu tutor.\n\n" +
		"Por favor, espera a que sea aprobada para poder jugar."

	textSuspended = "🚫 *Acceso Denegado*\n\n" +
		"Tu tutor te ha dado de baja en el sistema.\n\n" +
		"Si crees que esto es un error, contacta con tu tutor."

	textRestartHint = "❌ Error: sesión no válida.\n\nPor favor, usa /jugar para comenzar."

	textRetry = "⚠️ Error temporal del sistema.\n\nPor favor, inténtalo de nuevo en unos momentos."

	textFarewell = "De acuerdo. ¡Hasta la próxima!\n\nUsa /jugar cuando quieras comenzar."

	textBatchComplete = "🎉 *¡Felicitaciones!*\n\n" +
		"Has contestado a la tanda de preguntas propuestas.\n\n" +
		"⬆️ Usa /promocion para verificar si puedes subir de nivel\n" +
		"🎮 Usa /jugar para seguir avanzando"
)

func textNoQuestions(level int) string {
	return fmt.Sprintf("⚠️ *No hay preguntas disponibles*\n\n"+
		"No se encontraron preguntas activas para el nivel %d.\n\n"+
		"Por favor, contacta con tu tutor.", level)
}

func textGameStart(level, count int) string {
	return fmt.Sprintf("🎯 *¡Comencemos!*\n\n"+
		"📚 Nivel: %d\n"+
		"📝 Preguntas disponibles: %d\n\n"+
		"¡Buena suerte! 🍀", level, count)
}

func textLevelUp(newLevel int) string {
	return fmt.Sprintf("🎉 *¡Felicitaciones!*\n\n"+
		"Has subido al nivel %d.\n\n"+
		"🎮 Usa /jugar para comenzar con las nuevas preguntas", newLevel)
}

func textCorrect(explanation string) string {
	return fmt.Sprintf("✅ Has respondido. ¡¡Enhorabuena!!\n\n*Motivo:*\n%s", explanation)
}

func textIncorrect(explanation string) string {
	return fmt.Sprintf("❌ Respuesta incorrecta. ¡Qué pena!\n\n*Motivo:*\n%s", explanation)
}

func textPromotionPending(name string, level, answered, total int) string {
	missing := total - answered
	missingLine := fmt.Sprintf("📝 Te faltan %d preguntas por responder", missing)
	if missing == 1 {
		missingLine = "📝 Te falta 1 pregunta por responder"
	}
	return fmt.Sprintf("📊 *ESTADO DE PROMOCIÓN*\n\n"+
		"👤 Estudiante: %s\n"+
		"📖 Nivel actual: %d\n\n"+
		"⚠️ *No puedes promocionar todavía*\n\n"+
		"❌ Has respondido %d de %d preguntas\n"+
		"%s\n\n"+
		"💪 ¡Continúa jugando para completar el nivel!\n"+
		"🎮 Usa /jugar para seguir avanzando",
		name, level, answered, total, missingLine)
}

func textPromotionMax(name string, level, total int) string {
	return fmt.Sprintf("🏆 *¡FELICITACIONES!*\n\n"+
		"👤 Estudiante: %s\n"+
		"🎯 Nivel actual: %d (Nivel máximo)\n\n"+
		"🌟 *¡Has alcanzado el nivel máximo del juego!*\n"+
		"✅ Has completado todas las %d preguntas del nivel %d\n\n"+
		"🎓 ¡Eres un verdadero maestro del Trivial!",
		name, level, total, level)
}

func textPromotionSuccess(name string, oldLevel, newLevel, total int) string {
	return fmt.Sprintf("🎊 *¡PROMOCIÓN EXITOSA!*\n\n"+
		"👤 Estudiante: %s\n\n"+
		"✅ *Has sido promovido al Nivel %d*\n\n"+
		"🎯 Completaste todas las %d preguntas del Nivel %d\n"+
		"📈 Ahora jugarás con preguntas del Nivel %d\n\n"+
		"🎮 Usa /jugar para comenzar con las nuevas preguntas",
		name, newLevel, total, oldLevel, newLevel)
}
