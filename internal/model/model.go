package model

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"column:nombre;size:100;not null;index" json:"nombre"`
	Email        string    `gorm:"column:correo;size:150;not null;uniqueIndex" json:"correo"`
	RegisteredAt time.Time `gorm:"column:fecha_registro;not null" json:"fecha_registro"`
}

func (User) TableName() string {
	return "users"
}

type Movie struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"column:titulo;size:200;not null;index" json:"titulo"`
	Director  string    `gorm:"column:director;size:150;not null" json:"director"`
	Genre     string    `gorm:"column:genero;size:100;not null" json:"genero"`
	Duration  int       `gorm:"column:duracion;not null" json:"duracion"` // minutes
	Year      int       `gorm:"column:año;not null" json:"año"`
	Rating    string    `gorm:"column:clasificacion;size:10;not null" json:"clasificacion"`
	Synopsis  *string   `gorm:"column:sinopsis;size:1000" json:"sinopsis"`
	CreatedAt time.Time `gorm:"column:fecha_creacion;not null" json:"fecha_creacion"`
}

func (Movie) TableName() string {
	return "peliculas"
}

// Favorite links a user to a movie. User and Movie are never loaded; they only
// exist so the foreign keys are declared on the favoritos table.
type Favorite struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"column:id_usuario;not null;uniqueIndex:unique_user_movie" json:"id_usuario"`
	MovieID  uint      `gorm:"column:id_pelicula;not null;uniqueIndex:unique_user_movie;index" json:"id_pelicula"`
	MarkedAt time.Time `gorm:"column:fecha_marcado;not null" json:"fecha_marcado"`

	User  *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Movie *Movie `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Favorite) TableName() string {
	return "favoritos"
}

// All lists the models in dependency order for migrations.
func All() []any {
	return []any{&User{}, &Movie{}, &Favorite{}}
}
