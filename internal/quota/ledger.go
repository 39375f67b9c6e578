package quota

import "math"

// Лимиты по умолчанию, могут быть переопределены в config.yaml
const (
	// MaxUserBytes : суммарный лимит на пользователя (50 MiB)
	MaxUserBytes int64 = 52428800
	// MaxDocumentBytes : потолок на один документ (10 MiB)
	MaxDocumentBytes int64 = 10 << 20
	// MaxProfilePictureBytes : потолок на аватар, не зависит от остатка квоты (2 MiB)
	MaxProfilePictureBytes int64 = 2 << 20
)

// Decision : результат проверки квоты
// AvailableBytes — сколько байт ещё доступно пользователю при текущем totalSize
type Decision struct {
	Accepted       bool
	NewTotal       int64
	AvailableBytes int64
}

// CheckAndReserve : проверяет, помещается ли запись в квоту, и считает новый totalSize.
// deltaBytes знаковый: для новой загрузки это +size, для замены единственного
// объекта (аватара) вызывающий код заранее считает newSize-oldSize, поэтому
// уменьшение файла никогда не упирается в квоту.
func CheckAndReserve(currentTotal, deltaBytes, quotaMax int64) Decision {
	newTotal := currentTotal + deltaBytes

	available := quotaMax - currentTotal
	if available < 0 {
		available = 0
	}

	if newTotal > quotaMax {
		return Decision{
			Accepted:       false,
			NewTotal:       currentTotal,
			AvailableBytes: available,
		}
	}

	if newTotal < 0 {
		newTotal = 0
	}

	return Decision{
		Accepted:       true,
		NewTotal:       newTotal,
		AvailableBytes: available,
	}
}

// ApplyDelete : уменьшает totalSize на размер удалённой записи.
// Не даёт счётчику уйти в минус, даже если учёт уже разъехался.
func ApplyDelete(currentTotal, sizeBytes int64) int64 {
	newTotal := currentTotal - sizeBytes
	if newTotal < 0 {
		return 0
	}
	return newTotal
}

// ToMB : перевод байт в мегабайты с округлением до двух знаков.
// Только для отображения в ответах, в БД всегда хранятся байты.
func ToMB(bytes int64) float64 {
	mb := float64(bytes) / (1 << 20)
	return math.Round(mb*100) / 100
}
