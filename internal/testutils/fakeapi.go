package testutils

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sentinela-app/sentinela-go/internal/domain/model"
)

// TestUser é o usuário padrão das sessões de teste
func TestUser() model.User {
	return model.User{
		ID:       1,
		Name:     "Agente Teste",
		Email:    "agente@sentinela.gov.br",
		Role:     model.RolePontoFocal,
		ForceID:  1,
		IsActive: true,
	}
}

// TestPerson cria uma pessoa de teste com o id informado
func TestPerson(id int64) model.Person {
	return model.Person{
		ID:             id,
		FullName:       fmt.Sprintf("Pessoa Teste %d", id),
		CPF:            "52998224725",
		AddressPrimary: "Rua das Flores, 100",
		Latitude:       -8.05,
		Longitude:      -34.9,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
}

// UploadRecord registra um binário recebido pelo servidor falso
type UploadRecord struct {
	FileName string
	Category string
	Size     int
}

// FakeAPI é um servidor Sentinela em memória para testes de integração do
// cliente e dos serviços. O estado é guardado em mapas e cada rota conta
// quantas vezes foi atingida.
type FakeAPI struct {
	t      *testing.T
	server *httptest.Server

	mu      sync.Mutex
	people  map[int64]model.Person
	media   map[int64]model.Media
	users   map[int64]model.User
	forces  []model.Force
	uploads []UploadRecord
	calls   map[string]int
	nextID  int64

	// Token, quando preenchido, exige Authorization: Bearer <Token>
	Token string
	// FailUpload faz o endpoint de upload responder 500 para as categorias marcadas
	FailUpload map[string]bool
	// FailMediaCreate faz POST /media responder 500
	FailMediaCreate bool
	// FailPersonWrite faz POST e PATCH de /people responderem 500
	FailPersonWrite bool
}

// NewFakeAPI sobe o servidor falso; o shutdown é registrado no t.Cleanup
func NewFakeAPI(t *testing.T) *FakeAPI {
	gin.SetMode(gin.TestMode)

	f := &FakeAPI{
		t:          t,
		people:     make(map[int64]model.Person),
		media:      make(map[int64]model.Media),
		users:      make(map[int64]model.User),
		calls:      make(map[string]int),
		FailUpload: make(map[string]bool),
		nextID:     100,
	}

	router := gin.New()
	router.Use(f.authCheck)

	router.POST("/auth/login", f.login)
	router.GET("/auth/profile", f.profile)

	router.GET("/people", f.listPeople)
	router.POST("/people", f.createPerson)
	router.GET("/people/cpf/:cpf", f.personByCPF)
	router.GET("/people/:id", f.personByID)
	router.PATCH("/people/:id", f.updatePerson)
	router.POST("/people/search-by-face", f.searchByFace)

	router.GET("/media/person/:id", f.mediaByPerson)
	router.POST("/media", f.createMedia)
	router.DELETE("/media/:id", f.deleteMedia)

	router.POST("/upload", f.upload)

	router.GET("/users", f.listUsers)
	router.POST("/users", f.createUser)
	router.PATCH("/users/:id", f.updateUser)
	router.DELETE("/users/:id", f.deleteUser)

	router.GET("/forces", f.listForces)

	f.server = httptest.NewServer(router)
	t.Cleanup(f.server.Close)
	return f
}

// URL é o endereço base do servidor falso
func (f *FakeAPI) URL() string {
	return f.server.URL
}

// Calls retorna quantas vezes a rota foi atingida, ex: "GET /people"
func (f *FakeAPI) Calls(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[route]
}

// AddPerson semeia uma pessoa no estado do servidor
func (f *FakeAPI) AddPerson(p model.Person) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.people[p.ID] = p
}

// AddMedia semeia uma mídia no estado do servidor
func (f *FakeAPI) AddMedia(m model.Media) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.media[m.ID] = m
}

// AddUser semeia um usuário no estado do servidor
func (f *FakeAPI) AddUser(u model.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = u
}

// SetForces define as forças retornadas pelo servidor
func (f *FakeAPI) SetForces(forces []model.Force) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forces = forces
}

// Person retorna o estado corrente de uma pessoa
func (f *FakeAPI) Person(id int64) (model.Person, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.people[id]
	return p, ok
}

// MediaOfPerson retorna as mídias correntes de uma pessoa
func (f *FakeAPI) MediaOfPerson(personID int64) []model.Media {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.Media
	for _, m := range f.media {
		if m.PersonID == personID {
			result = append(result, m)
		}
	}
	return result
}

// Uploads retorna os binários recebidos, na ordem de chegada
func (f *FakeAPI) Uploads() []UploadRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]UploadRecord(nil), f.uploads...)
}

func (f *FakeAPI) record(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[c.Request.Method+" "+c.FullPath()]++
}

func (f *FakeAPI) next() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return f.nextID
}

func (f *FakeAPI) authCheck(c *gin.Context) {
	if f.Token == "" || c.FullPath() == "/auth/login" {
		c.Next()
		return
	}
	if c.GetHeader("Authorization") != "Bearer "+f.Token {
		apiError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Sessão inválida", false)
		c.Abort()
		return
	}
	c.Next()
}

// apiError escreve o envelope de erro estruturado da API
func apiError(c *gin.Context, status int, code, message string, userFacing bool) {
	c.JSON(status, gin.H{
		"statusCode":   status,
		"errorCode":    code,
		"message":      message,
		"isUserFacing": userFacing,
	})
}

func (f *FakeAPI) login(c *gin.Context) {
	f.record(c)

	var creds model.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		apiError(c, http.StatusBadRequest, "VALIDATION", "Credenciais malformadas", true)
		return
	}
	if creds.Password == "wrong" {
		apiError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "E-mail ou senha incorretos", true)
		return
	}
	c.JSON(http.StatusOK, model.LoginResponse{AccessToken: f.Token, User: TestUser()})
}

func (f *FakeAPI) profile(c *gin.Context) {
	f.record(c)
	c.JSON(http.StatusOK, TestUser())
}

func (f *FakeAPI) listPeople(c *gin.Context) {
	f.record(c)

	f.mu.Lock()
	var data []model.Person
	for _, p := range f.people {
		data = append(data, p)
	}
	f.mu.Unlock()

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	c.JSON(http.StatusOK, model.Page[model.Person]{
		Data:       data,
		Total:      int64(len(data)),
		Page:       page,
		Limit:      limit,
		TotalPages: 1,
	})
}

func (f *FakeAPI) personByID(c *gin.Context) {
	f.record(c)

	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	f.mu.Lock()
	p, ok := f.people[id]
	f.mu.Unlock()
	if !ok {
		apiError(c, http.StatusNotFound, "NOT_FOUND", "Pessoa não encontrada", true)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (f *FakeAPI) personByCPF(c *gin.Context) {
	f.record(c)

	cpf := c.Param("cpf")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.people {
		if p.CPF == cpf {
			c.JSON(http.StatusOK, p)
			return
		}
	}
	apiError(c, http.StatusNotFound, "NOT_FOUND", "Pessoa não encontrada", false)
}

func (f *FakeAPI) createPerson(c *gin.Context) {
	f.record(c)

	if f.FailPersonWrite {
		apiError(c, http.StatusInternalServerError, "INTERNAL", "Erro interno", false)
		return
	}

	var input model.CreatePersonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apiError(c, http.StatusBadRequest, "VALIDATION", "Payload inválido", true)
		return
	}

	p := model.Person{
		ID:               f.next(),
		FullName:         input.FullName,
		Nickname:         input.Nickname,
		CPF:              input.CPF,
		RG:               input.RG,
		VoterID:          input.VoterID,
		AddressPrimary:   input.AddressPrimary,
		AddressSecondary: input.AddressSecondary,
		Latitude:         input.Latitude,
		Longitude:        input.Longitude,
		MotherName:       input.MotherName,
		FatherName:       input.FatherName,
		WarrantStatus:    input.WarrantStatus,
		WarrantFileURL:   input.WarrantFileURL,
		Notes:            input.Notes,
		IsConfidential:   input.IsConfidential,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
	f.AddPerson(p)
	c.JSON(http.StatusCreated, p)
}

func (f *FakeAPI) updatePerson(c *gin.Context) {
	f.record(c)

	if f.FailPersonWrite {
		apiError(c, http.StatusInternalServerError, "INTERNAL", "Erro interno", false)
		return
	}

	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	f.mu.Lock()
	p, ok := f.people[id]
	f.mu.Unlock()
	if !ok {
		apiError(c, http.StatusNotFound, "NOT_FOUND", "Pessoa não encontrada", true)
		return
	}

	var input model.UpdatePersonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apiError(c, http.StatusBadRequest, "VALIDATION", "Payload inválido", true)
		return
	}

	if input.FullName != "" {
		p.FullName = input.FullName
	}
	p.Nickname = input.Nickname
	if input.CPF != "" {
		p.CPF = input.CPF
	}
	p.WarrantStatus = input.WarrantStatus
	p.WarrantFileURL = input.WarrantFileURL
	p.Notes = input.Notes
	if input.Latitude != nil {
		p.Latitude = *input.Latitude
	}
	if input.Longitude != nil {
		p.Longitude = *input.Longitude
	}
	if input.IsConfidential != nil {
		p.IsConfidential = *input.IsConfidential
	}
	p.UpdatedAt = time.Now().UTC()

	f.AddPerson(p)
	c.JSON(http.StatusOK, p)
}

func (f *FakeAPI) searchByFace(c *gin.Context) {
	f.record(c)

	if _, err := c.FormFile("file"); err != nil {
		apiError(c, http.StatusBadRequest, "VALIDATION", "Arquivo ausente", true)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	matches := make([]model.FaceMatch, 0, len(f.people))
	for _, p := range f.people {
		matches = append(matches, model.FaceMatch{Person: p, Similarity: 0.82, Distance: 0.18})
	}
	c.JSON(http.StatusOK, matches)
}

func (f *FakeAPI) mediaByPerson(c *gin.Context) {
	f.record(c)

	personID, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	result := f.MediaOfPerson(personID)
	if result == nil {
		result = []model.Media{}
	}
	c.JSON(http.StatusOK, result)
}

func (f *FakeAPI) createMedia(c *gin.Context) {
	f.record(c)

	if f.FailMediaCreate {
		apiError(c, http.StatusInternalServerError, "INTERNAL", "Erro interno", false)
		return
	}

	var input model.CreateMediaInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apiError(c, http.StatusBadRequest, "VALIDATION", "Payload inválido", true)
		return
	}

	m := model.Media{
		ID:          f.next(),
		Type:        input.Type,
		URL:         input.URL,
		Label:       input.Label,
		Description: input.Description,
		PersonID:    input.PersonID,
		CreatedAt:   time.Now().UTC(),
	}
	f.AddMedia(m)
	c.JSON(http.StatusCreated, m)
}

func (f *FakeAPI) deleteMedia(c *gin.Context) {
	f.record(c)

	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.media[id]; !ok {
		apiError(c, http.StatusNotFound, "NOT_FOUND", "Mídia não encontrada", false)
		return
	}
	delete(f.media, id)
	c.Status(http.StatusNoContent)
}

func (f *FakeAPI) upload(c *gin.Context) {
	f.record(c)

	file, err := c.FormFile("file")
	if err != nil {
		apiError(c, http.StatusBadRequest, "VALIDATION", "Arquivo ausente", true)
		return
	}
	category := c.PostForm("category")

	if f.FailUpload[category] {
		apiError(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Falha no armazenamento", false)
		return
	}

	src, err := file.Open()
	if err != nil {
		apiError(c, http.StatusInternalServerError, "INTERNAL", "Erro interno", false)
		return
	}
	defer src.Close()
	data, _ := io.ReadAll(src)

	f.mu.Lock()
	f.uploads = append(f.uploads, UploadRecord{FileName: file.Filename, Category: category, Size: len(data)})
	seq := len(f.uploads)
	f.mu.Unlock()

	c.JSON(http.StatusCreated, gin.H{
		"url": fmt.Sprintf("https://storage.sentinela.gov.br/%s/%d-%s", category, seq, file.Filename),
	})
}

func (f *FakeAPI) listUsers(c *gin.Context) {
	f.record(c)

	f.mu.Lock()
	var data []model.User
	for _, u := range f.users {
		data = append(data, u)
	}
	f.mu.Unlock()

	c.JSON(http.StatusOK, model.Page[model.User]{
		Data:       data,
		Total:      int64(len(data)),
		Page:       1,
		Limit:      10,
		TotalPages: 1,
	})
}

func (f *FakeAPI) createUser(c *gin.Context) {
	f.record(c)

	var input model.CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apiError(c, http.StatusBadRequest, "VALIDATION", "Payload inválido", true)
		return
	}

	u := model.User{
		ID:       f.next(),
		Name:     input.Name,
		Email:    input.Email,
		Role:     input.Role,
		ForceID:  input.ForceID,
		IsActive: true,
	}
	f.AddUser(u)
	c.JSON(http.StatusCreated, u)
}

func (f *FakeAPI) updateUser(c *gin.Context) {
	f.record(c)

	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	f.mu.Lock()
	u, ok := f.users[id]
	f.mu.Unlock()
	if !ok {
		apiError(c, http.StatusNotFound, "NOT_FOUND", "Usuário não encontrado", true)
		return
	}

	var input model.UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apiError(c, http.StatusBadRequest, "VALIDATION", "Payload inválido", true)
		return
	}

	if input.Name != "" {
		u.Name = input.Name
	}
	if input.Email != "" {
		u.Email = input.Email
	}
	if input.Role != "" {
		u.Role = input.Role
	}
	if input.ForceID != 0 {
		u.ForceID = input.ForceID
	}
	if input.IsActive != nil {
		u.IsActive = *input.IsActive
	}

	f.AddUser(u)
	c.JSON(http.StatusOK, u)
}

func (f *FakeAPI) deleteUser(c *gin.Context) {
	f.record(c)

	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		apiError(c, http.StatusNotFound, "NOT_FOUND", "Usuário não encontrado", true)
		return
	}
	delete(f.users, id)
	c.Status(http.StatusNoContent)
}

func (f *FakeAPI) listForces(c *gin.Context) {
	f.record(c)

	f.mu.Lock()
	defer f.mu.Unlock()
	forces := f.forces
	if forces == nil {
		forces = []model.Force{}
	}
	c.JSON(http.StatusOK, forces)
}
