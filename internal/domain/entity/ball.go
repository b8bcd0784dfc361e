package entity

// Ball представляет мяч с позицией, скоростью и радиусом
type Ball struct {
	X         int // координата X центра
	Y         int // координата Y центра
	VelocityX int // скорость по оси X
	VelocityY int // скорость по оси Y
	Radius    int // радиус в пикселях
}

// NewBall создаёт мяч в заданной точке с заданной скоростью
func NewBall(x, y, velocityX, velocityY, radius int) *Ball {
	return &Ball{
		X:         x,
		Y:         y,
		VelocityX: velocityX,
		VelocityY: velocityY,
		Radius:    radius,
	}
}

// UpdatePosition сдвигает мяч на его скорость и отражает от краёв кадра
func (b *Ball) UpdatePosition(width, height int) {
	b.X += b.VelocityX
	b.Y += b.VelocityY
	b.checkBounce(width, height)
}

// checkBounce меняет знак скорости, если мяч коснулся края кадра
func (b *Ball) checkBounce(width, height int) {
	if b.X-b.Radius <= 0 || b.X+b.Radius >= width {
		b.VelocityX = -b.VelocityX
	}
	if b.Y-b.Radius <= 0 || b.Y+b.Radius >= height {
		b.VelocityY = -b.VelocityY
	}
}

// Center возвращает текущий центр мяча
func (b *Ball) Center() Point {
	return Point{X: b.X, Y: b.Y}
}
