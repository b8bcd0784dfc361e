package entity

import "math"

// TimeBase — знаменатель временной шкалы кадров (90 кГц)
const TimeBase = 90000

// Frame — один кадр видеопотока в сыром формате BGR24
type Frame struct {
	Seq    uint64 // порядковый номер кадра
	PTS    int64  // метка времени в единицах TimeBase
	Width  int    // ширина кадра
	Height int    // высота кадра
	Data   []byte // пиксели BGR24, Width*Height*3 байт
}

// PTSStep возвращает шаг PTS для заданной частоты кадров
func PTSStep(fps int) int64 {
	if fps <= 0 {
		return 0
	}
	return TimeBase / int64(fps)
}

// Point — координаты центра мяча в пикселях
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Distance возвращает евклидово расстояние до другой точки
func (p Point) Distance(other Point) float64 {
	return math.Hypot(float64(p.X-other.X), float64(p.Y-other.Y))
}
