package model

// 用户角色
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Roles 允许的角色集合
var Roles = []string{RoleUser, RoleAdmin}

// Genders 性别键到显示名的映射
var Genders = map[string]string{
	"male":   "男",
	"female": "女",
}

// Professions 职业键到显示名的映射
var Professions = map[int]string{
	1: "学生",
	2: "全职主妇",
	3: "白领",
	4: "医生",
	5: "私营业主",
	6: "文艺工作者",
	7: "自由职业者",
	8: "其他",
}

// IsValidRole 判断角色是否合法
func IsValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsValidGender 判断性别键是否合法，空值表示未设置
func IsValidGender(key string) bool {
	if key == "" {
		return true
	}
	_, ok := Genders[key]
	return ok
}

// IsValidProfession 判断职业键是否合法，0表示未设置
func IsValidProfession(key int) bool {
	if key == 0 {
		return true
	}
	_, ok := Professions[key]
	return ok
}
