package model

type User struct {
	Id       int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Username string `json:"username" gorm:"uniqueIndex;not null"`
	Password string `json:"-"` // bcrypt hash, never the raw password
}

type Setting struct {
	Id    int    `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	Name  string `json:"name" form:"name" gorm:"uniqueIndex;not null"`
	Value string `json:"value" form:"value"`
}

type CarouselImage struct {
	Id           int    `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	ImageURL     string `json:"imageUrl" form:"imageUrl"`
	LinkURL      string `json:"linkUrl" form:"linkUrl"`
	AltText      string `json:"altText" form:"altText"`
	FileName     string `json:"fileName" form:"fileName"`
	DisplayOrder int    `json:"displayOrder" form:"displayOrder"`
	CreatedAt    int64  `json:"createdAt" gorm:"autoCreateTime"`
}
