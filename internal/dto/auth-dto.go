package dto

type LoginDTO struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshDTO struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type TokenPairDTO struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthUserDTO struct {
	ID    uint64 `json:"id"`
	Login string `json:"login"`
	Fio   string `json:"fio"`
	Role  string `json:"role"`
}

type LoginResponseDTO struct {
	User   AuthUserDTO  `json:"user"`
	Tokens TokenPairDTO `json:"tokens"`
}
